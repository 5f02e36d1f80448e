package contracts

import (
	"context"

	"github.com/Asterixfoods/asterix-charts/provisioner/models"
)

// IProvisioningOrchestrator drives one provisioning run: validate the input,
// create the project folder, stage the CSV, delegate to the chart generator,
// and clean up on success.
type IProvisioningOrchestrator interface {
	Run(ctx context.Context) (*models.RunReport, error)
}
