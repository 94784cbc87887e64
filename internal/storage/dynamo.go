// Package storage provides the DynamoDB persistence layer for suppression
// records and daily reputation metrics. Both stores share one single-table
// keying convention: a string PK grouping related items and a string SK
// ordering them within the group.
package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// NewClient builds a DynamoDB client from the default AWS config chain,
// optionally pinned to a shared-config profile for local development.
func NewClient(ctx context.Context, region, profile string) (*dynamodb.Client, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg), nil
}
