package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"employeeapp/internal/auth"
	authHandler "employeeapp/internal/auth/handler"
	"employeeapp/internal/authz"
	hrHandler "employeeapp/internal/hr/handler"
	hrMetrics "employeeapp/internal/hr/metrics"
	"employeeapp/internal/hr/ports"
	"employeeapp/internal/hr/service"
	departmentStore "employeeapp/internal/hr/store/department"
	employeeStore "employeeapp/internal/hr/store/employee"
	"employeeapp/internal/idempotency"
	jwttoken "employeeapp/internal/jwt_token"
	"employeeapp/internal/ledger"
	"employeeapp/internal/notify"
	"employeeapp/internal/platform/config"
	"employeeapp/internal/platform/metrics"
	"employeeapp/internal/platform/postgres"
	"employeeapp/internal/platform/redis"
	httptransport "employeeapp/internal/transport/http"
	"employeeapp/pkg/domain"
)

type application struct {
	router     http.Handler
	dispatcher *notify.Dispatcher
	closers    []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	employees   ports.EmployeeStore
	departments ports.DepartmentStore
	tx          ports.StoreTx
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger, reg *prometheus.Registry) (*application, error) {
	app := &application{}
	checks := map[string]httptransport.HealthCheck{}

	st, err := buildStores(ctx, cfg, log, app, checks)
	if err != nil {
		app.close()
		return nil, err
	}

	sender, err := buildSender(ctx, cfg.Notify, log, app)
	if err != nil {
		app.close()
		return nil, err
	}
	app.dispatcher = notify.NewDispatcher(sender, log, dispatcherOptions(cfg.Notify, reg)...)

	idemStore, err := buildIdempotencyStore(ctx, cfg.Redis, log, app, checks)
	if err != nil {
		app.close()
		return nil, err
	}
	guard := idempotency.NewGuard(idemStore, log, idempotency.WithMetrics(idempotency.NewMetrics(reg)))

	hrOpts := []service.Option{service.WithLogger(log), service.WithMetrics(hrMetrics.New(reg))}
	employees := service.NewEmployeeService(st.employees, st.departments, st.tx,
		ledger.NewSimulated(cfg.Ledger.MaxCredit), app.dispatcher, hrOpts...)
	departments := service.NewDepartmentService(st.departments, hrOpts...)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.TokenTTL)
	op := cfg.Auth.Operator
	directory := auth.NewDirectory(auth.Operator{
		Username: op.Username,
		Identity: domain.Identity{ID: domain.RecordID(op.ID), Name: op.Name, Role: op.Role},
	})

	app.router = httptransport.NewRouter(httptransport.Deps{
		Logger:           log,
		Metrics:          metrics.New(reg),
		Verifier:         tokens,
		CORSOrigins:      cfg.CORSOrigins,
		Auth:             authHandler.New(auth.NewService(directory, tokens, log), log),
		HR:               hrHandler.New(employees, departments, log),
		EmployeeOwners:   authz.OwnerResolverFunc(employees.OwnerOf),
		DepartmentOwners: authz.OwnerResolverFunc(departments.OwnerOf),
		Idempotency:      guard,
		HealthChecks:     checks,
	})
	return app, nil
}

// dispatcherOptions leaves the circuit breaker off unless a threshold is set.
func dispatcherOptions(cfg config.Notify, reg prometheus.Registerer) []notify.Option {
	opts := []notify.Option{
		notify.WithWorkers(cfg.Workers),
		notify.WithQueueSize(cfg.QueueSize),
		notify.WithTimeout(cfg.Timeout),
		notify.WithMetrics(notify.NewMetrics(reg)),
	}
	if cfg.BreakerThreshold > 0 {
		opts = append(opts, notify.WithCircuitBreaker(notify.NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown)))
	}
	return opts
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger, app *application, checks map[string]httptransport.HealthCheck) (stores, error) {
	if cfg.Store.Backend == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		emps := employeeStore.NewInMemory()
		return stores{
			employees:   emps,
			departments: departmentStore.NewInMemory(emps),
			tx:          employeeStore.NewInMemoryTx(emps, ledger.NewMemoryJournal()),
		}, nil
	}

	db, err := postgres.Connect(ctx, cfg.Store.Driver, cfg.Store.DSN,
		postgres.Options{MaxElapsed: cfg.StartupMaxElapsed}, log)
	if err != nil {
		return stores{}, err
	}
	app.closers = append(app.closers, func() { _ = db.Close() })
	if err := postgres.Migrate(ctx, db); err != nil {
		return stores{}, fmt.Errorf("migrate schema: %w", err)
	}
	checks["database"] = pingCheck(db)

	emps := employeeStore.NewPostgres(db)
	return stores{
		employees:   emps,
		departments: departmentStore.NewPostgres(db),
		tx:          employeeStore.NewPostgresTx(db, emps, ledger.NewPostgresJournal(db)),
	}, nil
}

func buildSender(ctx context.Context, cfg config.Notify, log *slog.Logger, app *application) (notify.Sender, error) {
	switch cfg.Sink {
	case config.SinkWebhook:
		return notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookToken, cfg.Timeout), nil
	case config.SinkKafka:
		sender, err := notify.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, sender.Close)
		if err := sender.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure kafka topic", "topic", cfg.KafkaTopic, "error", err)
		}
		return sender, nil
	case config.SinkAMQP:
		sender, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = sender.Close() })
		return sender, nil
	default:
		log.Info("notifications disabled")
		return notify.NopSender{}, nil
	}
}

func buildIdempotencyStore(ctx context.Context, cfg config.RedisConfig, log *slog.Logger, app *application, checks map[string]httptransport.HealthCheck) (idempotency.Store, error) {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("REDIS_URL not set; idempotency keys are kept in memory")
		return idempotency.NewMemoryStore(), nil
	}
	app.closers = append(app.closers, func() { _ = client.Close() })
	checks["redis"] = client.Health
	return idempotency.NewRedisStore(client.Client), nil
}

func pingCheck(db *sql.DB) httptransport.HealthCheck {
	return db.PingContext
}
