/*
Package registry associates Go record types with DynamoDB index maps.

An index map lists the key attributes written with every item and the
templates they are expanded from:

	registry.RegisterIndexMap[User](map[string]string{
	    "PK":  "USER#{id}",
	    "SK":  "USER#{id}",
	    "PK1": "EMAIL#{email}",
	})

Macros name record attributes. The registry is thread-safe and is usually
populated during initialization.
*/
package registry
