package ports

import (
	"context"

	"kickpredict/domain/campaign"
	"kickpredict/domain/verdict"
)

// Predictor is the inference entry point consumed by the HTTP, form and CLI front ends
type Predictor interface {
	Predict(ctx context.Context, in campaign.Input) (verdict.Verdict, error)
}
