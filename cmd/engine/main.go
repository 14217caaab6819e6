package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/stockiq/backend-go/internal/cache"
	"github.com/stockiq/backend-go/internal/config"
	"github.com/stockiq/backend-go/internal/engine"
	"github.com/stockiq/backend-go/internal/storage"
	"github.com/stockiq/backend-go/pkg/logger"

	pgrepo "github.com/stockiq/backend-go/internal/repository/postgres"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDateFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Calculation date in YYYY-MM-DD format (defaults to today)",
		Value: time.Now().UTC().Format("2006-01-02"),
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "engine",
		Usage: "Inventory analytics engine",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the full analysis for one calculation date",
				Flags:  []cli.Flag{newDBURLFlag(), newDateFlag()},
				Action: runOnce,
			},
			{
				Name:  "serve",
				Usage: "Serve HTTP triggers for on-demand runs",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "port",
						Usage:   "Listen port for the trigger server",
						Value:   "8090",
						EnvVars: []string{"ENGINE_PORT"},
					},
				},
				Action: serveTriggers,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("engine failed")
	}
}

func openOrchestrator(c *cli.Context) (*engine.Orchestrator, *sqlx.DB, error) {
	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	th := engine.DefaultThresholds()
	store := pgrepo.NewEngineRepository(pgrepo.Wrap(db), th.DefaultCoverageDays, th.DefaultLeadTimeDays)
	return engine.NewOrchestrator(store, th), db, nil
}

func runOnce(c *cli.Context) error {
	calcDate, err := time.Parse("2006-01-02", c.String("date"))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", c.String("date"), err)
	}

	orch, db, err := openOrchestrator(c)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := orch.Run(c.Context, calcDate)
	if err != nil {
		return err
	}
	finishRun(c.Context, report)

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	return nil
}

// finishRun archives the report and drops the dashboard cache. Both are
// best-effort, a failure never fails a completed run.
func finishRun(ctx context.Context, report *engine.RunReport) {
	cfg := config.Load()

	if cfg.Archive.Enabled {
		if err := archiveReport(ctx, cfg.Archive, report); err != nil {
			logger.Log.Warn().Err(err).Str("run_id", report.ID).Msg("archiving run report failed")
		}
	}

	dashCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, skipping invalidation")
		return
	}
	if err := dashCache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func archiveReport(ctx context.Context, cfg config.ArchiveConfig, report *engine.RunReport) error {
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	calcDate, _ := time.Parse("2006-01-02", report.CalcDate)
	key := storage.RunReportKey(calcDate, report.ID)
	if err := client.UploadObject(ctx, key, "application/json", payload); err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Msg("run report archived")
	return nil
}

func serveTriggers(c *cli.Context) error {
	orch, db, err := openOrchestrator(c)
	if err != nil {
		return err
	}
	defer db.Close()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		calcDate := time.Now().UTC()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				http.Error(w, `{"error":"date must be YYYY-MM-DD"}`, http.StatusBadRequest)
				return
			}
			calcDate = parsed
		}

		report, err := orch.Run(r.Context(), calcDate)
		if err != nil {
			http.Error(w, `{"error":"analysis run failed"}`, http.StatusInternalServerError)
			return
		}
		finishRun(r.Context(), report)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}).Methods(http.MethodPost)

	addr := ":" + c.String("port")
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // runs are synchronous
	}
	logger.Log.Info().Str("addr", addr).Msg("engine trigger server listening")
	return srv.ListenAndServe()
}
