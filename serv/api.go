// Package serv provides an HTTP service around the hitsdb analytics
// engine. It exposes the query, schema and data loading APIs, a
// benchmark runner streaming progress over a websocket, health and
// prometheus metrics endpoints.
//
//	conf, err := serv.ReadInConfig(path.Join("./config", serv.GetConfigName()))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hs, err := serv.NewService(conf)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hs.Start()
package serv

import (
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/hitsdb/hitsdb/core"
	"github.com/hitsdb/hitsdb/internal/util"
)

// Service struct holds the hitsdb service
type Service struct {
	conf    *Config
	log     *zap.SugaredLogger
	zlog    *zap.Logger
	hdb     *core.HitsDB
	metrics *metrics
}

// NewService function creates a new hitsdb service
func NewService(conf *Config) (*Service, error) {
	initConfig(conf)

	zlog := util.NewLogger(conf.LogFormat == "json", conf.LogLevel)

	s := &Service{
		conf:    conf,
		zlog:    zlog,
		log:     zlog.Sugar(),
		metrics: newMetrics(),
	}

	if err := s.initHitsDB(); err != nil {
		return nil, err
	}

	return s, nil
}

func initConfig(conf *Config) {
	if conf.AppName == "" {
		conf.AppName = "HitsDB"
	}

	switch {
	case conf.HostPort != "":
		conf.hostPort = conf.HostPort

	case conf.Host != "" || conf.Port != "":
		h := conf.Host
		if h == "" {
			h = "0.0.0.0"
		}
		p := conf.Port
		if p == "" {
			p = "8080"
		}
		conf.hostPort = net.JoinHostPort(h, p)

	default:
		conf.hostPort = "0.0.0.0:8080"
	}

	if conf.Production {
		conf.WatchAndReload = false
	}
}

func (s *Service) initHitsDB() error {
	hdb, err := core.NewHitsDB(&s.conf.Core)
	if err != nil {
		return err
	}
	s.hdb = hdb

	if s.conf.DataFile == "" {
		return nil
	}

	fn := s.conf.RelPath(s.conf.DataFile)

	if strings.HasSuffix(fn, ".arrow") {
		err = restoreFile(hdb, fn)
	} else {
		err = loadFile(hdb, fn)
	}

	if err != nil {
		return fmt.Errorf("failed to load %s: %w", fn, err)
	}

	s.log.Infof("loaded %s: %d rows", s.conf.DataFile, hdb.Rows())
	return nil
}

// Start function starts the service and blocks until it exits
func (s *Service) Start() error {
	return startHTTP(s)
}

// HitsDB returns the embedded engine used by the service
func (s *Service) HitsDB() *core.HitsDB {
	return s.hdb
}
