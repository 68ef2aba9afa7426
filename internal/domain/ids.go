package domain

// TenantID identifies a storefront tenant. It is opaque to the core:
// its format is controlled by the surrounding platform.
type TenantID string

// BookingID is an internal identifier for a booking record.
type BookingID string

// PackageID is an internal identifier for a bookable wedding/elopement package.
type PackageID string

// BlackoutID is an internal identifier for a blackout-date record.
type BlackoutID string
