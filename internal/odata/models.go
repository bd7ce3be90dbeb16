// Package odata provides the authoritative-catalog client and the
// cross-catalog matcher that resolves a discovered scene into the product
// record holding its download identifier.
package odata

import "time"

// Product is a catalog product record. Only the fields the matcher and the
// downloader consume are modeled.
type Product struct {
	ID              string      `json:"Id"`
	Name            string      `json:"Name"`
	PublicationDate time.Time   `json:"PublicationDate"`
	ContentDate     ContentDate `json:"ContentDate"`
}

// ContentDate is the product's sensing interval as the catalog records it.
type ContentDate struct {
	Start time.Time `json:"Start"`
	End   time.Time `json:"End"`
}

// productsResponse is the OData envelope around a product list.
type productsResponse struct {
	Value []Product `json:"value"`
}
