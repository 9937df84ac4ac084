package serv

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"
)

func startHTTP(s *Service) error {
	h, err := routesHandler(s)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           s.conf.hostPort,
		Handler:        h,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	if s.conf.WatchAndReload && s.conf.cpath != "" {
		go func() {
			if err := startConfigWatcher(s); err != nil {
				s.log.Warnf("config watcher: %s", err)
			}
		}()
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		if err := srv.Shutdown(context.Background()); err != nil {
			s.log.Warnf("shutdown: %s", err)
		}
		close(idleConnsClosed)
	}()

	s.log.Infof("%s listening on %s", s.conf.AppName, s.conf.hostPort)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-idleConnsClosed
	return nil
}
