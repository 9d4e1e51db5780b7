package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"garagerent/internal/api"
	"garagerent/internal/auth"
	"garagerent/internal/repository"
	"garagerent/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	spaceRepo := repository.NewSpaceRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	jobRepo := repository.NewJobRepository(db)
	operatorRepo := repository.NewOperatorAuthRepository(db)

	policy := settlementPolicyFromEnv()
	settlementSvc := service.NewSettlementService(walletRepo, creditRepo, policy)
	availabilitySvc := service.NewAvailabilityService(bookingRepo, spaceRepo)
	notifySvc := service.NewNotifyService()
	bookingSvc := service.NewBookingService(bookingRepo, spaceRepo, availabilitySvc, settlementSvc, notifySvc)
	jobSvc := service.NewJobService(jobRepo)
	operatorSvc := service.NewOperatorAuthService(operatorRepo)

	bookingHandler := api.NewBookingHandler(bookingSvc, availabilitySvc)
	walletHandler := api.NewWalletHandler(settlementSvc)
	adminHandler := api.NewAdminHandler(bookingSvc, bookingRepo, jobSvc)
	operatorAuthHandler := api.NewOperatorAuthHandler(operatorSvc)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/operators/login", operatorAuthHandler.Login).Methods("POST")

	// Authenticated user endpoints
	user := r.PathPrefix("/api").Subrouter()
	user.Use(auth.UserAuthMiddleware)
	user.HandleFunc("/bookings", bookingHandler.CreateBooking).Methods("POST")
	user.HandleFunc("/bookings", bookingHandler.ListMyBookings).Methods("GET")
	user.HandleFunc("/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	user.HandleFunc("/bookings/{id}/status", bookingHandler.TransitionBooking).Methods("PUT")
	user.HandleFunc("/bookings/{id}", bookingHandler.CancelBooking).Methods("DELETE")
	user.HandleFunc("/spaces/{id}/bookings", bookingHandler.ListSpaceBookings).Methods("GET")
	user.HandleFunc("/wallet", walletHandler.GetBalance).Methods("GET")
	user.HandleFunc("/wallet/deposits", walletHandler.AddFunds).Methods("POST")
	user.HandleFunc("/wallet/transfers", walletHandler.Transfer).Methods("POST")
	user.HandleFunc("/wallet/transactions", walletHandler.WalletHistory).Methods("GET")
	user.HandleFunc("/credits", walletHandler.GetCredits).Methods("GET")
	user.HandleFunc("/credits", walletHandler.AddCredits).Methods("POST")
	user.HandleFunc("/credits/transactions", walletHandler.CreditHistory).Methods("GET")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/operators", operatorAuthHandler.CreateOperator).Methods("POST")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/spaces/{id}/bookings", adminHandler.CancelSpaceBookings).Methods("DELETE")
	admin.HandleFunc("/jobs/expire-pending", adminHandler.RunExpireSweep).Methods("POST")

	c := cron.New()
	c.AddFunc("@every 15m", func() {
		if err := jobSvc.ExpireStalePendingBookings(context.Background()); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, corsHandler)))
}

func settlementPolicyFromEnv() service.SettlementPolicy {
	policy := service.DefaultSettlementPolicy()
	if raw := os.Getenv("COMMISSION_RATE_BPS"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			policy.CommissionRateBps = v
		}
	}
	if raw := os.Getenv("CREDIT_CAP_PER_BOOKING"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			policy.CreditCapPerBooking = v
		}
	}
	if raw := os.Getenv("PLATFORM_ACCOUNT_ID"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			policy.PlatformAccountID = v
		}
	}
	return policy
}
