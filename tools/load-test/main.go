package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	// Configuration
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "API base URL")
	numStores := flag.Int("stores", 20, "number of store ids to cycle through")
	requestsPerStore := flag.Int("requests", 50, "requests per store")
	concurrency := flag.Int("concurrency", 25, "concurrent requests")
	flag.Parse()

	totalRequests := *numStores * *requestsPerStore

	fmt.Printf("Starting load test: %d stores (%d requests each) against %s with concurrency %d\n", *numStores, *requestsPerStore, *baseURL, *concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64
	var upstreamCount int64

	client := &http.Client{Timeout: 30 * time.Second}
	startTime := time.Now()

	for i := 0; i < *numStores; i++ {
		storeID := fmt.Sprintf("store-%03d", i+1)

		for j := 0; j < *requestsPerStore; j++ {
			wg.Add(1)
			sem <- struct{}{} // Acquire token

			// Alternate between the live dashboard and the weekly report.
			path := "status"
			if j%2 == 1 {
				path = "weekly"
			}
			url := fmt.Sprintf("%s/stores/%s/%s", *baseURL, storeID, path)

			go func() {
				defer wg.Done()
				defer func() { <-sem }() // Release token

				resp, err := client.Get(url)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					return
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&successCount, 1)
				case resp.StatusCode == http.StatusBadGateway:
					atomic.AddInt64(&upstreamCount, 1)
				default:
					atomic.AddInt64(&failCount, 1)
				}
			}()
		}
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Upstream (502): %d\n", upstreamCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
