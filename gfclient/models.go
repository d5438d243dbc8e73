package gfclient

import "time"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"LAT"`
	Lon float64 `json:"LON"`
}

// AirspaceVolume is the volume UAS zones are matched against.
type AirspaceVolume struct {
	Polygon                []Point `json:"polygon"`
	LowerLimitInM          *int    `json:"lowerLimit,omitempty"`
	LowerVerticalReference string  `json:"lowerVerticalReference,omitempty"`
	UpperLimitInM          *int    `json:"upperLimit,omitempty"`
	UpperVerticalReference string  `json:"upperVerticalReference,omitempty"`
}

// UASZonesFilter selects the UAS zones a subscription is notified about.
type UASZonesFilter struct {
	AirspaceVolume       AirspaceVolume `json:"airspaceVolume"`
	StartDateTime        time.Time      `json:"startDateTime"`
	EndDateTime          time.Time      `json:"endDateTime"`
	Regions              []int          `json:"regions,omitempty"`
	RequestID            string         `json:"requestID,omitempty"`
	UpdatedAfterDateTime *time.Time     `json:"updatedAfterDateTime,omitempty"`
}

// GenericReply is the status block every reply of the service carries.
type GenericReply struct {
	RequestStatus               string `json:"RequestStatus"`
	RequestExceptionDescription string `json:"RequestExceptionDescription,omitempty"`
	RequestProcessedTimestamp   string `json:"RequestProcessedTimestamp,omitempty"`
}

// SubscriptionReply is returned when a subscription is created.
type SubscriptionReply struct {
	SubscriptionID      string       `json:"subscriptionID"`
	PublicationLocation string       `json:"publicationLocation"`
	GenericReply        GenericReply `json:"genericReply"`
}

// Subscription is a UAS zones subscription as stored by the service.
type Subscription struct {
	ID                  string          `json:"subscriptionID"`
	PublicationLocation string          `json:"publicationLocation"`
	Active              bool            `json:"active"`
	UASZonesFilter      *UASZonesFilter `json:"UASZonesFilter,omitempty"`
}

type subscriptionDetailsReply struct {
	Subscription Subscription `json:"subscription"`
	GenericReply GenericReply `json:"genericReply"`
}

type subscriptionsRequest struct {
	UASZonesFilter UASZonesFilter `json:"UASZonesFilter"`
}

type subscriptionUpdate struct {
	Active bool `json:"active"`
}
