package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/postrelay/postrelay/configs"
	"github.com/postrelay/postrelay/internal/api/handlers"
	"github.com/postrelay/postrelay/internal/api/middleware"
	"github.com/postrelay/postrelay/internal/dispatch"
	job "github.com/postrelay/postrelay/internal/jobs"
	"github.com/postrelay/postrelay/internal/media"
	"github.com/postrelay/postrelay/internal/models"
	"github.com/postrelay/postrelay/internal/queue"
	"github.com/postrelay/postrelay/internal/repository"
	"github.com/postrelay/postrelay/internal/schedule"
	"github.com/postrelay/postrelay/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURI,
		DB:   cfg.RedisDB,
	})
	defer rdb.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI, DB: cfg.RedisDB}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	pageRepo := repository.NewPageRepository(db)

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second}
	downloader := media.NewDownloader(httpClient)

	dispatcher := dispatch.NewDispatcher(map[string]dispatch.Publisher{
		models.ChannelFacebook:  service.NewFacebookService(httpClient),
		models.ChannelInstagram: service.NewInstagramService(httpClient),
		models.ChannelTwitter:   service.NewTwitterService(*cfg, downloader),
		models.ChannelLinkedin:  service.NewLinkedinService(*cfg, httpClient, downloader),
	})

	statusService := service.NewStatusService(postRepo)
	pageService := service.NewPageService(*cfg, pageRepo)
	timerStore := schedule.NewRedisTimerStore(rdb)
	queueClient := queue.NewClient(asynqClient)
	postService := service.NewPostService(postRepo, pageService, timerStore, queueClient)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/create", post.CreatePost)
	api.Put("/posts/update", post.UpdatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/calendar", post.CalendarPosts)
	api.Post("/posts/approve", post.ApprovePost)
	api.Post("/posts/reject", post.RejectPost)
	api.Post("/posts/remove", post.RemovePost)

	page := handlers.NewPageHandler(pageService)
	api.Post("/pages/create", page.AddPage)
	api.Get("/pages", page.ListPages)
	api.Post("/pages/remove", page.RemovePage)

	// cron jobs
	missedPostJob := job.NewMissedPostJob(postRepo, statusService,
		time.Duration(cfg.MissedPostGraceMins)*time.Minute)

	// queue
	queueW := queue.NewQueue(postRepo, dispatcher, statusService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", missedPostJob.SweepMissedPosts)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: cfg.DispatchConcurrency,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDispatchPost, queueW.HandleDispatchPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	// Expired timer keys become dispatch tasks. The listener only parses and
	// enqueues; all publishing happens on the asynq workers.
	listener := schedule.NewListener(rdb, cfg.RedisDB, func(ctx context.Context, key schedule.Key) error {
		return queueClient.EnqueueDispatch(ctx, key.Kind, key.PageID, key.PostID, key.PageToken)
	})
	if err := listener.Start(context.Background()); err != nil {
		log.Fatalf("Could not start expiry listener: %v", err)
	}

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, listener)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, listener *schedule.Listener) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	listener.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
