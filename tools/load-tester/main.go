package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var buckets = []string{"day", "week", "month"}

func main() {
	targetURL := flag.String("url", "http://localhost:8080/keyword_search", "Target URL for keyword search")
	keywords := flag.String("keywords", "election,vaccine,inflation,climate", "Comma-separated keywords to rotate through")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 50, "Requests per second limit")
	flag.Parse()

	terms := strings.Split(*keywords, ",")

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 10)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *concurrency; i++ {
		g.Go(func() error {
			client := &http.Client{
				Timeout: 30 * time.Second,
			}

			for {
				if err := limiter.Wait(gctx); err != nil {
					return nil // context expired, test is over
				}

				payload := fmt.Sprintf(`{"keyword_query": "%s", "aggregate_time_period": "%s"}`,
					terms[rand.Intn(len(terms))], buckets[rand.Intn(len(buckets))])

				req, err := http.NewRequestWithContext(gctx, http.MethodPost, *targetURL, bytes.NewBufferString(payload))
				if err != nil {
					continue
				}
				req.Header.Set("Content-Type", "application/json")

				resp, err := client.Do(req)
				if err != nil {
					errorCount.Add(1)
					continue
				}

				if resp.StatusCode == http.StatusOK {
					successCount.Add(1)
				} else {
					errorCount.Add(1)
				}
				resp.Body.Close()
			}
		})
	}

	_ = g.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
