package main

import (
	"github.com/hatlonely/hms/admin"
	"github.com/hatlonely/hms/audit"
	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/log"
	"github.com/hatlonely/hms/log/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app 一次命令执行所需的全部组件
type app struct {
	logger   logger.Logger
	registry *prometheus.Registry
	db       *database.DB
	executor *database.ObservableExecutor
	trail    *audit.Trail
	service  *admin.Service
}

func newApp(c *Config) (*app, error) {
	l, err := log.NewLoggerWithOptions(&c.Log)
	if err != nil {
		return nil, err
	}
	log.SetDefault(l)

	a := &app{logger: l, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a.db, err = database.NewDBWithOptions(&c.Database)
	if err != nil {
		_ = a.Close()
		return nil, errors.WithMessage(err, "database.NewDBWithOptions failed")
	}

	a.executor, err = database.NewObservableExecutorWithOptions(a.db, &c.Observability, l, a.registry)
	if err != nil {
		_ = a.Close()
		return nil, errors.WithMessage(err, "database.NewObservableExecutorWithOptions failed")
	}

	a.trail, err = audit.NewStoreWithOptions(&c.Audit)
	if err != nil {
		_ = a.Close()
		return nil, errors.WithMessage(err, "audit.NewStoreWithOptions failed")
	}

	a.service, err = admin.NewServiceWithOptions(&c.Admin, a.executor, a.trail, l)
	if err != nil {
		_ = a.Close()
		return nil, errors.WithMessage(err, "admin.NewServiceWithOptions failed")
	}

	return a, nil
}

// Close executor 关闭时会关闭底层连接池
func (a *app) Close() error {
	var errs []error
	if a.trail != nil {
		if err := a.trail.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.executor != nil {
		if err := a.executor.Close(); err != nil {
			errs = append(errs, err)
		}
	} else if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("close app failed: %v", errs)
	}
	return nil
}
