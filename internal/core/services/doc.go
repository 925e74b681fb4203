// Package services contains the application logic of the tutoring
// pipeline: ingestion, adaptive response generation, and learning gap
// analysis. Services depend only on the ports; adapters are injected at
// composition time.
package services
