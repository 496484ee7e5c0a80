// Command booking-sim exercises a running washline instance end to end: it
// fetches the pickup calendar, picks the first open slot, fetches the
// matching delivery calendar and submits an order.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type gridResponse struct {
	NotBefore string `json:"not_before"`
	Days      []struct {
		Date  string `json:"date"`
		Slots []struct {
			Hour      int  `json:"hour"`
			Available bool `json:"available"`
		} `json:"time_slots"`
	} `json:"days"`
}

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "washline base url")
		name    = flag.String("name", getenv("CUSTOMER_NAME", "Sim Customer"), "customer name")
		email   = flag.String("email", getenv("CUSTOMER_EMAIL", "sim@example.com"), "customer email")
		tz      = flag.String("timezone", getenv("TIMEZONE", "Europe/London"), "calendar timezone")
	)
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fatal(err.Error())
	}
	base := strings.TrimRight(*baseURL, "/")

	pickup, err := firstOpenSlot(base+"/api/v1/slots/pickup", loc)
	if err != nil {
		fatal("pickup grid: " + err.Error())
	}
	deliveryURL := base + "/api/v1/slots/delivery?pickup=" + url.QueryEscape(pickup.Format(time.RFC3339))
	delivery, err := firstOpenSlot(deliveryURL, loc)
	if err != nil {
		fatal("delivery grid: " + err.Error())
	}

	body, err := json.Marshal(map[string]string{
		"customer_name":  *name,
		"customer_email": *email,
		"pickup_time":    pickup.Format(time.RFC3339),
		"delivery_time":  delivery.Format(time.RFC3339),
	})
	if err != nil {
		fatal(err.Error())
	}
	resp, err := http.Post(base+"/api/v1/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	fmt.Printf("status=%d pickup=%s delivery=%s response=%v\n",
		resp.StatusCode, pickup.Format(time.RFC3339), delivery.Format(time.RFC3339), out)
}

func firstOpenSlot(target string, loc *time.Location) (time.Time, error) {
	resp, err := http.Get(target)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var grid gridResponse
	if err := json.NewDecoder(resp.Body).Decode(&grid); err != nil {
		return time.Time{}, err
	}
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			if !slot.Available {
				continue
			}
			d, err := time.ParseInLocation("2006-01-02", day.Date, loc)
			if err != nil {
				return time.Time{}, err
			}
			return time.Date(d.Year(), d.Month(), d.Day(), slot.Hour, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("no open slots")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "booking-sim: "+msg)
	os.Exit(1)
}
