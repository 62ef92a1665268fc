package airspacecache

import "airspacecache/entities"

// availableCountries is the static catalog list_available_countries()
// answers from — spec.md §6: "the catalog is data, not code." Sizes
// are rough estimates of the downloaded GeoJSON payload per country,
// used by the UI to warn before a large download.
var availableCountries = []entities.CountryInfo{
	{Code: "FR", Name: "France", EstimatedSizeMB: 4.2},
	{Code: "CH", Name: "Switzerland", EstimatedSizeMB: 2.1},
	{Code: "AT", Name: "Austria", EstimatedSizeMB: 2.4},
	{Code: "DE", Name: "Germany", EstimatedSizeMB: 5.8},
	{Code: "IT", Name: "Italy", EstimatedSizeMB: 4.9},
	{Code: "ES", Name: "Spain", EstimatedSizeMB: 4.6},
	{Code: "PT", Name: "Portugal", EstimatedSizeMB: 1.3},
	{Code: "SI", Name: "Slovenia", EstimatedSizeMB: 0.8},
	{Code: "HR", Name: "Croatia", EstimatedSizeMB: 1.1},
	{Code: "GR", Name: "Greece", EstimatedSizeMB: 1.9},
	{Code: "GB", Name: "United Kingdom", EstimatedSizeMB: 3.7},
	{Code: "IE", Name: "Ireland", EstimatedSizeMB: 0.9},
	{Code: "BE", Name: "Belgium", EstimatedSizeMB: 1.2},
	{Code: "NL", Name: "Netherlands", EstimatedSizeMB: 1.4},
	{Code: "LU", Name: "Luxembourg", EstimatedSizeMB: 0.2},
	{Code: "PL", Name: "Poland", EstimatedSizeMB: 2.6},
	{Code: "CZ", Name: "Czechia", EstimatedSizeMB: 1.5},
	{Code: "SK", Name: "Slovakia", EstimatedSizeMB: 1.0},
	{Code: "HU", Name: "Hungary", EstimatedSizeMB: 1.3},
	{Code: "RO", Name: "Romania", EstimatedSizeMB: 2.0},
	{Code: "BG", Name: "Bulgaria", EstimatedSizeMB: 1.1},
	{Code: "NO", Name: "Norway", EstimatedSizeMB: 2.8},
	{Code: "SE", Name: "Sweden", EstimatedSizeMB: 2.9},
	{Code: "FI", Name: "Finland", EstimatedSizeMB: 2.2},
	{Code: "DK", Name: "Denmark", EstimatedSizeMB: 1.0},
	{Code: "TR", Name: "Turkey", EstimatedSizeMB: 3.1},
	{Code: "US", Name: "United States", EstimatedSizeMB: 18.5},
	{Code: "CA", Name: "Canada", EstimatedSizeMB: 6.4},
	{Code: "AU", Name: "Australia", EstimatedSizeMB: 4.3},
	{Code: "NZ", Name: "New Zealand", EstimatedSizeMB: 1.0},
}
