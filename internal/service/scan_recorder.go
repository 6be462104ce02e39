package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"taply/internal/geo"
	"taply/internal/model"
	"taply/internal/repository"
)

const scanRecordTimeout = 5 * time.Second

// ScanRecorder appends scan events for resolved QR codes. Recording is a
// side effect of the redirect and must never block or fail it: RecordAsync
// detaches from the request context and all failures are logged and
// swallowed.
type ScanRecorder struct {
	scans    repository.ScanRepository
	resolver geo.Resolver
	log      *logrus.Logger

	wg sync.WaitGroup
}

// NewScanRecorder creates a scan recorder.
func NewScanRecorder(scans repository.ScanRepository, resolver geo.Resolver, log *logrus.Logger) *ScanRecorder {
	return &ScanRecorder{scans: scans, resolver: resolver, log: log}
}

// RecordAsync records a scan event in the background. The write runs on its
// own deadline so it completes even if the scanner disconnects mid-redirect.
func (r *ScanRecorder) RecordAsync(qr *model.QRCode, ip, userAgent string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), scanRecordTimeout)
		defer cancel()
		r.Record(ctx, qr, ip, userAgent)
	}()
}

// Record appends a scan event synchronously. Geolocation is advisory and
// falls back to Unknown; an insert failure is logged, never returned.
func (r *ScanRecorder) Record(ctx context.Context, qr *model.QRCode, ip, userAgent string) {
	location := geo.Location{Country: geo.Unknown, City: geo.Unknown}
	if r.resolver != nil && ip != "" {
		location = r.resolver.Lookup(ctx, ip)
	}

	device, browser, osName := parseUserAgent(userAgent)

	event := &model.ScanEvent{
		QRCodeID:  qr.ID,
		ProfileID: qr.ProfileID,
		IP:        ip,
		Country:   location.Country,
		City:      location.City,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
		Device:    device,
		Browser:   browser,
		OS:        osName,
		GeoRaw:    location.Raw,
	}

	if err := r.scans.Create(ctx, event); err != nil && r.log != nil {
		r.log.WithError(err).WithField("qr_code_id", qr.ID).Warn("scan event write failed")
	}
}

// Wait blocks until in-flight recordings finish. Used on shutdown and in tests.
func (r *ScanRecorder) Wait() {
	r.wg.Wait()
}
