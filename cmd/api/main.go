package main

import (
	_ "bookstore/api/swagger" // swagger docs
	"bookstore/internal/auth"
	"bookstore/internal/database"
	"bookstore/internal/handler"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	"bookstore/internal/service"
	"bookstore/internal/supabase"
	"bookstore/internal/websocket"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Book Catalog API
// @version         1.0
// @description     REST API for a book catalog with user accounts, roles and permissions.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbUser := envOr("DB_USERNAME", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbName := envOr("DB_NAME", "bookstore")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	jwtSecret := os.Getenv("SUPABASE_JWT_SECRET")
	if supabaseURL == "" || supabaseKey == "" || jwtSecret == "" {
		log.Fatal("SUPABASE_URL, SUPABASE_KEY and SUPABASE_JWT_SECRET must be set")
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Seed(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	validator := auth.NewTokenValidator(jwtSecret)
	idp := supabase.NewClient(supabaseURL, supabaseKey)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	bookRepo := repository.NewBookRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	authorRepo := repository.NewAuthorRepository(db)

	authService := service.NewAuthService(userRepo, roleRepo, idp, validator, txManager)
	userService := service.NewUserService(userRepo, roleRepo, txManager)
	bookService := service.NewBookService(bookRepo, genreRepo, authorRepo, txManager, wsHub)
	roleService := service.NewRoleService(roleRepo, txManager)
	genreService := service.NewGenreService(genreRepo, txManager)
	authorService := service.NewAuthorService(authorRepo, txManager)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, authService)
	bookHandler := handler.NewBookHandler(bookService)
	roleHandler := handler.NewRoleHandler(roleService)
	genreHandler := handler.NewGenreHandler(genreService)
	authorHandler := handler.NewAuthorHandler(authorService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	origins := envOr("ALLOWED_ORIGINS", "http://localhost:5173")
	corsConfig.AllowOrigins = strings.Split(origins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimit(10, 20))
	router.Use(middleware.Authenticate(validator, userRepo))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, validator, userRepo)
	})

	// API Routing
	authHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	bookHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	genreHandler.RegisterRoutes(router.Group(""))
	authorHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
