package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Deteksi timezone lewat geolokasi IP. Telegram tidak mengekspos lokasi
// user, jadi asumsinya user satu zona dengan server bot. Hasil di-cache
// per user supaya menu tidak menunggu HTTP tiap render.

const timezoneCacheTTL = 24 * time.Hour

type timezoneEntry struct {
	location  *time.Location
	country   string
	city      string
	fetchedAt time.Time
}

var (
	tzMu    sync.Mutex
	tzCache = make(map[int64]*timezoneEntry)
)

// userLocation mengembalikan timezone user dari cache, fetch ulang kalau
// entry-nya sudah lewat TTL
func userLocation(userID int64) (*time.Location, error) {
	tzMu.Lock()
	defer tzMu.Unlock()

	if entry, ok := tzCache[userID]; ok && time.Since(entry.fetchedAt) < timezoneCacheTTL {
		return entry.location, nil
	}

	entry, err := fetchTimezone()
	if err != nil {
		GetLogger().Warn("Timezone: gagal deteksi untuk user %d: %v", userID, err)
		return nil, err
	}
	entry.fetchedAt = time.Now()
	tzCache[userID] = entry
	GetLogger().Debug("Timezone: user %d -> %s, %s (%s)", userID, entry.city, entry.country, entry.location.String())
	return entry.location, nil
}

// fetchTimezone query ip-api.com (gratis, max 45 request/menit tanpa key)
func fetchTimezone() (*timezoneEntry, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://ip-api.com/json/?fields=status,message,timezone,country,city")
	if err != nil {
		return nil, fmt.Errorf("gagal fetch timezone: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gagal read response: %w", err)
	}

	var result struct {
		Status   string `json:"status"`
		Message  string `json:"message,omitempty"`
		Timezone string `json:"timezone"`
		Country  string `json:"country"`
		City     string `json:"city"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("gagal parse response: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("API error: %s", result.Message)
	}

	loc, err := time.LoadLocation(result.Timezone)
	if err != nil {
		return nil, fmt.Errorf("gagal load location: %w", err)
	}

	return &timezoneEntry{
		location: loc,
		country:  result.Country,
		city:     result.City,
	}, nil
}

// FormatTimeForUserSafe memformat waktu sekarang di timezone user, fallback
// ke waktu lokal server kalau deteksi gagal
func FormatTimeForUserSafe(userID int64, format string) string {
	loc, err := userLocation(userID)
	if err != nil {
		return time.Now().Format(format)
	}
	return time.Now().In(loc).Format(format)
}

// FormatTimestampForUser memformat timestamp tertentu di timezone user
func FormatTimestampForUser(userID int64, t time.Time, format string) string {
	loc, err := userLocation(userID)
	if err != nil {
		return t.Format(format)
	}
	return t.In(loc).Format(format)
}
