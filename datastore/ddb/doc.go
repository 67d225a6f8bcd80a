/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design with an EntityType attribute on every item
  - Macro-based key expansion (e.g., "USER#{id}")
  - Lookups through a Global Secondary Index, with a scan fallback
  - Create-only writes guarded by attribute_not_exists(PK)

Macro Expansion:
Key attributes are produced from templates filled with record attributes:

	indexMap := map[string]string{
	    "PK":  "USER#{id}",     // Becomes "USER#0b6f..."
	    "SK":  "PROFILE",       // Static value
	    "PK1": "EMAIL#{email}", // GSI1 partition key
	}
	registry.RegisterIndexMap[User](indexMap)

Lookups:
FindBy scans the table with an equality filter unless a lookup index is
configured:

	gsi, _ := ddb.GetGSIConfig("GSI1")
	store, err := ddb.NewDynamodbDataStore(client, "entities", userSchema,
	    ddb.WithLookupIndex(gsi, "EMAIL#{email}"),
	    ddb.WithCreateOnly(),
	)

Records without an identity get a random UUID before they are written.
*/
package ddb
