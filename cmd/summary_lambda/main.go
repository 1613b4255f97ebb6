// cmd/summary_lambda/main.go
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	app "custody-wallet/internal"
	"custody-wallet/internal/service"
	"custody-wallet/internal/util"
)

var summaries service.SummaryService

func init() {
	application := app.NewApplication()
	if err := application.Initialize(context.Background()); err != nil {
		util.GetLogger().Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	summaries = application.SummaryService
}

// HandleRequest is triggered by an EventBridge schedule on the first day of
// each month and summarizes the month that just ended.
func HandleRequest(ctx context.Context, event events.CloudWatchEvent) error {
	logger := util.GetLogger()

	now := event.Time
	if now.IsZero() {
		now = time.Now()
	}
	logger.Info("Starting monthly payment summary", "event_id", event.ID, "scheduled_at", now)

	summary, err := summaries.GenerateMonthlySummary(ctx, now)
	if err != nil {
		logger.Error("Monthly payment summary failed", "error", err)
		return err
	}

	logger.Info("Monthly payment summary finished", "month", summary.Month, "year", summary.Year, "total", summary.TotalPayments)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
