package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/hashicorp/consul/api"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"

	"github.com/ajisaka/taskdeck/authsvc/pkg/authservice"
	"github.com/ajisaka/taskdeck/authsvc/pkg/authtransport"
	"github.com/ajisaka/taskdeck/authsvc/tokenstore"
	"github.com/ajisaka/taskdeck/tasksvc"
	taskdb "github.com/ajisaka/taskdeck/tasksvc/db/gorm"
	"github.com/ajisaka/taskdeck/tasksvc/pkg/taskendpoint"
	"github.com/ajisaka/taskdeck/tasksvc/pkg/taskservice"
	"github.com/ajisaka/taskdeck/tasksvc/pkg/tasktransport"
	"github.com/ajisaka/taskdeck/usersvc"
	userdb "github.com/ajisaka/taskdeck/usersvc/db/gorm"
	"github.com/ajisaka/taskdeck/usersvc/pkg/userendpoint"
	"github.com/ajisaka/taskdeck/usersvc/pkg/userservice"
	"github.com/ajisaka/taskdeck/usersvc/pkg/usertransport"
	"github.com/gorilla/mux"
)

func main() {
	fs := flag.NewFlagSet("taskdeck", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":8000"),
			"HTTP listen address",
		)
		consulAddr = fs.String(
			"consul.addr",
			getEnv("CONSUL_ADDR", ""),
			"Consul agent address",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"Database URL",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	var db *libgorm.DB
	var err error
	{
		if *databaseURL != "" {
			db, err = libgorm.Open(postgres.Open(*databaseURL), &libgorm.Config{})
		} else {
			db, err = libgorm.Open(sqlite.Open("taskdeck.db"), &libgorm.Config{})
		}
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
	}

	var tokens tokenstore.Client
	{
		consulConfig := api.DefaultConfig()
		if len(*consulAddr) > 0 {
			consulConfig.Address = *consulAddr
		}
		consulClient, err := api.NewClient(consulConfig)
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}

		tokens = tokenstore.NewClient(consulClient)
	}

	db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{})

	userRepository := userdb.NewUserRepository(db)
	taskRepository := taskdb.NewTaskRepository(db)
	tokenizer := authservice.NewTokenizer()
	authenticator := authtransport.NewAuthenticator(tokens, userRepository)

	requestCount := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "taskdeck",
		Subsystem: "tasksvc",
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method"})
	requestLatency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: "taskdeck",
		Subsystem: "tasksvc",
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, []string{"method"})

	var taskService taskservice.Service
	{
		taskService = taskservice.New(taskRepository, logger)
		taskService = taskservice.InstrumentingMiddleware(requestCount, requestLatency)(taskService)
	}
	userService := userservice.New(userRepository, tokenizer, tokens, logger)

	var (
		taskEndpoints = taskendpoint.New(taskService, logger)
		userEndpoints = userendpoint.New(userService, logger)
	)

	r := mux.NewRouter()
	r.PathPrefix("/users").Handler(usertransport.NewHTTPHandler(userEndpoints, authenticator, logger))
	r.PathPrefix("/").Handler(tasktransport.NewHTTPHandler(taskEndpoints, authenticator, logger))

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, r)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}
