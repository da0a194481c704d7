package ports

import (
	"context"

	"kickpredict/domain/campaign"
)

// DatasetReader loads the historical campaigns used for training
type DatasetReader interface {
	ReadCampaigns(ctx context.Context) ([]campaign.Record, error)
	Source() string
}
