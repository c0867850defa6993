package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barangay-hris/payroll-backend-go/internal/config"
	payrollDomain "github.com/barangay-hris/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/barangay-hris/payroll-backend-go/internal/handler/http"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/database"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/barangay-hris/payroll-backend-go/internal/repository/postgresql"
	deductionService "github.com/barangay-hris/payroll-backend-go/internal/service/deduction"
	loanService "github.com/barangay-hris/payroll-backend-go/internal/service/loan"
	notificationService "github.com/barangay-hris/payroll-backend-go/internal/service/notification"
	payrollService "github.com/barangay-hris/payroll-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Payroll.Timezone)
	if err != nil {
		log.Fatal("Invalid payroll timezone:", err)
	}
	policy, err := payrollDomain.NewPeriodPolicy(payrollDomain.PeriodConvention(cfg.Payroll.Convention), loc)
	if err != nil {
		log.Fatal("Invalid payroll convention:", err)
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	deductionRepo := postgresql.NewDeductionRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	notificationSvc := notificationService.NewNotificationService(notificationRepo)
	deductionSvc := deductionService.NewDeductionService(db, deductionRepo, employeeRepo)
	loanSvc := loanService.NewLoanService(db, loanRepo, notificationSvc)
	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		employeeRepo,
		deductionRepo,
		loanRepo,
		notificationSvc,
		policy,
		nil,
	)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	deductionHandler := appHTTP.NewDeductionHandler(deductionSvc)
	loanHandler := appHTTP.NewLoanHandler(loanSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc)

	router := appHTTP.NewRouter(
		JWTService,
		payrollHandler,
		deductionHandler,
		loanHandler,
		notificationHandler,
		cfg.App.AllowedOrigins,
	)

	// Archived entries drift only when history is corrected by hand, so a
	// periodic sweep is enough to keep the cache columns honest.
	scheduler := cron.NewScheduler()
	scheduler.AddJob("reconcile-archived", cfg.Payroll.ReconcileInterval, func(ctx context.Context) error {
		_, err := payrollSvc.ReconcileArchived(ctx)
		return err
	})
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Payroll.ReconcileOnStartup {
		go func() {
			if _, err := payrollSvc.ReconcileArchived(context.Background()); err != nil {
				log.Println("Startup reconciliation failed:", err)
			}
		}()
	}

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}
}
