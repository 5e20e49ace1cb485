package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/adventurers"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/consumables"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/equipment"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/ledger"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/quests"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/specialities"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/auth"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/db"
)

func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	log.Printf("[INFO] mode:%s\n", cfg.Mode)
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		log.Fatal("config: mode must be dev or release")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	cat := catalog.NewStore(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cat.Seed(ctx); err != nil {
		cancel()
		log.Fatalf("catalog seed: %v", err)
	}
	cancel()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS is only needed while the front end runs on its own port
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	secret := []byte(cfg.Auth.JWTSecret)
	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	authSvc := auth.NewService(auth.NewStore(conn), secret, ttl)

	ledgerStore := ledger.NewStore(conn)
	ledgerSvc := ledger.NewService(conn)
	questSvc := quests.NewService(conn, cat, ledgerStore, cfg.Quest.WearPerQuest)

	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)

	protected := api.Group("")
	protected.Use(auth.RequireAuth(secret))
	quests.RegisterRoutes(protected, questSvc)
	adventurers.RegisterRoutes(protected, adventurers.NewService(conn))
	consumables.RegisterRoutes(protected, consumables.NewService(conn))
	equipment.RegisterRoutes(protected, equipment.NewService(conn, cat))
	specialities.RegisterRoutes(protected, specialities.NewService(conn))
	ledger.RegisterRoutes(protected, ledgerSvc)

	admin := api.Group("")
	admin.Use(auth.RequireAuth(secret), auth.RequireRole(auth.RoleGuildMaster))
	auth.RegisterAccountRoutes(admin, authSvc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
