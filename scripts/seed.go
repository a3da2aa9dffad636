package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/idgen"
	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/config"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	sqlrepository "github.com/gigmile/loan-ledger/internal/infrastructure/repository/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Seeds a handful of loans through the ledger services, using the database
// configured in the environment. The first installment of every other loan
// is paid so that schedules show both states.
func main() {
	cfg := config.Load()
	ctx := domain.WithActor(context.Background(), "seed")

	db, err := persistence.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	fmt.Printf("Connected to %s successfully\n", cfg.Database.Driver)

	logger := zap.NewNop()
	store := sqlrepository.NewStore(db, nil, logger)

	ids := idgen.NewGenerator(cfg.Ledger.IDRetryBudget, logger)
	if err := ids.Bootstrap(ctx, store); err != nil {
		log.Fatalf("Failed to bootstrap id sequences: %v", err)
	}

	cadence, err := domain.NewCadence(cfg.Ledger.BillingCadence, cfg.Ledger.InstallmentIntervalDay)
	if err != nil {
		log.Fatalf("Invalid billing cadence: %v", err)
	}

	loans := service.NewLoanService(store, ids, cadence, service.LedgerOptions{}, nil, logger)
	ledger := service.NewLedgerService(store, ids, service.LedgerOptions{}, nil, nil, logger)

	seeds := []struct {
		customerID string
		vehicleID  string
		principal  int64
		rate       string
		tenure     int
	}{
		{"CUST00001", "VEH-KA01-1001", 850000, "9.5", 36},
		{"CUST00002", "VEH-KA01-1002", 1200000, "10.25", 48},
		{"CUST00003", "VEH-KA01-1003", 450000, "12", 24},
		{"CUST00004", "VEH-KA01-1004", 2000000, "8.75", 60},
		{"CUST00005", "VEH-KA01-1005", 300000, "0", 12},
	}

	disbursed := time.Now().UTC().AddDate(0, -1, 0)

	for i, s := range seeds {
		loan, err := loans.CreateLoan(ctx, service.CreateLoanRequest{
			CustomerID:       s.customerID,
			VehicleID:        s.vehicleID,
			Principal:        decimal.NewFromInt(s.principal),
			InterestRate:     decimal.RequireFromString(s.rate),
			TenureMonths:     s.tenure,
			ProcessingFee:    decimal.NewFromInt(s.principal / 100),
			DisbursementDate: disbursed,
		})
		if err != nil {
			log.Fatalf("Failed to seed loan for %s: %v", s.customerID, err)
		}

		fmt.Printf("Seeded loan: %s (Customer: %s, EMI: %s, Tenure: %d)\n",
			loan.LoanID, loan.CustomerID, loan.EMIAmount.StringFixed(domain.CurrencyPlaces), loan.TenureMonths)

		if i%2 != 0 {
			continue
		}

		payment, err := ledger.RecordPayment(ctx, service.RecordPaymentRequest{
			LoanID:            loan.LoanID,
			InstallmentNumber: 1,
			Amount:            loan.EMIAmount,
			Method:            domain.PaymentMethod{Kind: domain.PaymentMethodBankTransfer},
			PaidDate:          loan.DueDate(1),
			TransactionID:     fmt.Sprintf("SEED-%s-1", loan.LoanID),
		})
		if err != nil {
			log.Fatalf("Failed to seed payment for %s: %v", loan.LoanID, err)
		}

		fmt.Printf("  Paid installment 1: %s\n", payment.PaymentID)
	}

	fmt.Println("\nSeed completed successfully!")
}
