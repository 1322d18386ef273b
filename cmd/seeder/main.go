// Command seeder warms the ranking store of a running stats API by requesting
// event ratings and season rankings, so the first real client does not pay for
// the rebuild.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "stats API base URL")
	events := flag.String("events", "", "comma-separated event codes to rate, e.g. 2025casj,2025txhou")
	year := flag.Int("year", time.Now().Year(), "season whose global rankings are rebuilt")
	priority := flag.Bool("priority", false, "also refresh expired ranking shards")
	offseason := flag.Bool("offseason", false, "include offseason events in global rankings")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Minute}
	failed := 0

	for _, code := range strings.Split(*events, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if err := get(client, fmt.Sprintf("%s/events/%s/ratings", *apiURL, code)); err != nil {
			log.Printf("event %s: %v", code, err)
			failed++
		}
	}

	url := fmt.Sprintf("%s/rankings/%d?priority=%t&offseason=%t", *apiURL, *year, *priority, *offseason)
	if err := get(client, url); err != nil {
		log.Printf("rankings %d: %v", *year, err)
		failed++
	}

	if failed > 0 {
		log.Fatalf("%d requests failed", failed)
	}
	log.Println("Seed complete")
}

func get(client *http.Client, url string) error {
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	log.Printf("GET %s (%s)", url, time.Since(start).Round(time.Millisecond))
	return nil
}
