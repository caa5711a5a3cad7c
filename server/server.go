package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/didip/tollbooth"
	"github.com/golang/glog"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/pbsmetrics"
	metricsconfig "github.com/prebid/prebid-cookiesync/pbsmetrics/config"
)

// Listen serves the main, admin and (when a port is configured) Prometheus servers until the
// process gets SIGTERM or SIGINT, then shuts each of them down gracefully.
func Listen(cfg *config.Configuration, handler http.Handler, adminHandler http.Handler, metrics *metricsconfig.DetailedMetricsEngine) {
	stopSignals := notifyOnStop()
	servers := newManagedServers(cfg, handler, adminHandler, metrics)
	if err := openListeners(servers); err != nil {
		glog.Errorf("Error listening for TCP connections: %v", err)
		return
	}

	done := make(chan struct{})
	stoppers := make([]chan<- os.Signal, 0, len(servers))
	for _, s := range servers {
		stop := make(chan os.Signal)
		stoppers = append(stoppers, stop)
		go shutdownAfterSignals(s.server, stop, done)
		go runServer(s.server, s.name, s.listener)
	}
	wait(stopSignals, done, stoppers...)
}

// notifyOnStop relays SIGTERM and SIGINT. signal.Notify drops signals it cannot deliver right away,
// so the channel is buffered.
func notifyOnStop() chan os.Signal {
	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, syscall.SIGTERM, syscall.SIGINT)
	return stopSignals
}

type managedServer struct {
	name     string
	server   *http.Server
	listener net.Listener
	// metrics counts accepted and closed connections. Only the main server sets it.
	metrics pbsmetrics.MetricsEngine
}

func newManagedServers(cfg *config.Configuration, handler http.Handler, adminHandler http.Handler, metrics *metricsconfig.DetailedMetricsEngine) []*managedServer {
	mainServer := &managedServer{name: "Main", server: newMainServer(cfg, handler)}
	if metrics != nil {
		mainServer.metrics = metrics
	}
	servers := []*managedServer{
		mainServer,
		{name: "Admin", server: newAdminServer(cfg, adminHandler)},
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		servers = append(servers, &managedServer{name: "Prometheus", server: newPrometheusServer(cfg, metrics)})
	}
	return servers
}

// openListeners binds every server's address. If one fails, the ones already bound are closed.
func openListeners(servers []*managedServer) error {
	for i, s := range servers {
		ln, err := newListener(s.server.Addr, s.metrics)
		if err != nil {
			for _, opened := range servers[:i] {
				opened.listener.Close()
				opened.listener = nil
			}
			return fmt.Errorf("%s server: %v", s.name, err)
		}
		s.listener = ln
	}
	return nil
}

func newAdminServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.Host + ":" + strconv.Itoa(cfg.AdminPort),
		Handler: handler,
	}
}

func newMainServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Handler:      wrapMainHandler(cfg, handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// wrapMainHandler adds the compression and rate limiting the host turned on. The rate limit is
// checked before anything is compressed.
func wrapMainHandler(cfg *config.Configuration, handler http.Handler) http.Handler {
	if cfg.EnableGzip {
		handler = gziphandler.GzipHandler(handler)
	}
	if cfg.RateLimit.Enabled {
		handler = tollbooth.LimitHandler(tollbooth.NewLimiter(cfg.RateLimit.RequestsPerSecond, nil), handler)
	}
	return handler
}

func runServer(server *http.Server, name string, listener net.Listener) {
	glog.Infof("%s server starting on: %s", name, server.Addr)
	err := server.Serve(listener)
	glog.Errorf("%s server quit with error: %v", name, err)
}

func newListener(address string, metrics pbsmetrics.MetricsEngine) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("Error listening for TCP connections on %s: %v", address, err)
	}

	if tcp, ok := ln.(*net.TCPListener); ok {
		ln = &tcpKeepAliveListener{tcp}
	} else {
		glog.Warningf("net.Listen on %s did not return a TCPListener. Keep-alives are off.", address)
	}

	if metrics != nil {
		ln = &monitorableListener{ln, metrics}
	}
	return ln, nil
}

// wait fans the first stop signal out to every server and returns once all of them are down.
func wait(inbound <-chan os.Signal, done <-chan struct{}, outbound ...chan<- os.Signal) {
	sig := <-inbound

	for _, out := range outbound {
		go sendSignal(out, sig)
	}
	for range outbound {
		<-done
	}
}

func shutdownAfterSignals(server *http.Server, stopper <-chan os.Signal, done chan<- struct{}) {
	sig := <-stopper

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	glog.Infof("Stopping %s because of signal: %s", server.Addr, sig.String())
	if err := server.Shutdown(ctx); err != nil {
		glog.Errorf("Failed to shutdown %s: %v", server.Addr, err)
	}
	done <- struct{}{}
}

func sendSignal(to chan<- os.Signal, sig os.Signal) {
	to <- sig
}
