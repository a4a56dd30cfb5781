/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

// GSIConfig holds the configuration for a global secondary index the store
// may query instead of scanning.
type GSIConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the partition key attribute of the GSI. Its template
	// is read from the collection's index map under the same name.
	PartitionKeyName string
	// SortKeyName is the sort key attribute of the GSI, if any.
	SortKeyName string
}

// DefaultGSIConfigs returns the default GSI configurations.
func DefaultGSIConfigs() []GSIConfig {
	return []GSIConfig{
		{
			IndexName:        "GSI1",
			PartitionKeyName: "GSI1PK",
			SortKeyName:      "GSI1SK",
		},
	}
}
