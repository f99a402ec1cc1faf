package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type outcome struct {
	StudentID string
	Status    int
	Position  int
	Duration  time.Duration
	Error     error
}

type availability struct {
	Data struct {
		Capacity   int `json:"capacity"`
		Registered int `json:"registered"`
		Waitlisted int `json:"waitlisted"`
	} `json:"data"`
}

func main() {
	var (
		base      string
		token     string
		sectionID int64
		students  int
		prefix    string
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("ENROLL_STORM_TOKEN"), "ADMIN bearer token")
	flag.Int64Var(&sectionID, "section", 0, "Section to enroll into")
	flag.IntVar(&students, "students", 50, "Number of concurrent students")
	flag.StringVar(&prefix, "prefix", "storm-", "Student id prefix; ids are <prefix><n>")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if sectionID <= 0 {
		log.Fatalf("-section is required")
	}

	client := &http.Client{Timeout: timeout}

	before, err := fetchAvailability(client, base, sectionID)
	if err != nil {
		log.Fatalf("failed to read availability: %v", err)
	}

	results := make([]outcome, students)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = enroll(client, base, token, fmt.Sprintf("%s%d", prefix, i+1), sectionID)
		}(i)
	}
	close(start)
	wg.Wait()

	after, err := fetchAvailability(client, base, sectionID)
	if err != nil {
		log.Fatalf("failed to read availability: %v", err)
	}

	violations := check(before, after, results)
	printReport(results, after, violations)
	if len(violations) > 0 {
		os.Exit(1)
	}
}

func enroll(client *http.Client, base, token, studentID string, sectionID int64) outcome {
	res := outcome{StudentID: studentID}
	payload, _ := json.Marshal(map[string]interface{}{"studentId": studentID, "sectionId": sectionID})
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(base, "/")+"/enroll", bytes.NewReader(payload))
	if err != nil {
		res.Error = err
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(started)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Errorf("read body: %w", err)
		return res
	}
	if resp.StatusCode == http.StatusOK {
		var placement struct {
			WaitlistPosition int `json:"waitlistPosition"`
		}
		if err := json.Unmarshal(body, &placement); err != nil {
			res.Error = fmt.Errorf("decode waitlist body: %w", err)
			return res
		}
		res.Position = placement.WaitlistPosition
	}
	return res
}

func fetchAvailability(client *http.Client, base string, sectionID int64) (*availability, error) {
	if client == nil {
		return nil, errors.New("nil client")
	}
	url := fmt.Sprintf("%s/sections/%d/availability", strings.TrimRight(base, "/"), sectionID)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out availability
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// check verifies the seat cap and that new waitlist positions are distinct and
// continue the queue that existed before the run.
func check(before, after *availability, results []outcome) []string {
	var violations []string
	if after.Data.Registered > after.Data.Capacity {
		violations = append(violations, fmt.Sprintf("registered %d exceeds capacity %d", after.Data.Registered, after.Data.Capacity))
	}

	admitted := 0
	var positions []int
	for _, res := range results {
		switch res.Status {
		case http.StatusCreated:
			admitted++
		case http.StatusOK:
			positions = append(positions, res.Position)
		}
	}
	if got := after.Data.Registered - before.Data.Registered; got != admitted {
		violations = append(violations, fmt.Sprintf("%d admitted responses but registered grew by %d", admitted, got))
	}

	sort.Ints(positions)
	for i, pos := range positions {
		if want := before.Data.Waitlisted + i + 1; pos != want {
			violations = append(violations, fmt.Sprintf("waitlist position %d, want %d", pos, want))
			break
		}
	}
	return violations
}

func printReport(results []outcome, after *availability, violations []string) {
	counts := make(map[int]int)
	var errs int
	var slowest time.Duration
	for _, res := range results {
		if res.Error != nil {
			errs++
			continue
		}
		counts[res.Status]++
		if res.Duration > slowest {
			slowest = res.Duration
		}
	}

	fmt.Println("Enrollment Storm Report")
	fmt.Println("=======================")
	statuses := make([]int, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)
	for _, status := range statuses {
		fmt.Printf("  %d %s: %d\n", status, http.StatusText(status), counts[status])
	}
	fmt.Printf("  transport errors: %d, slowest: %s\n", errs, slowest)
	fmt.Printf("  capacity %d, registered %d, waitlisted %d\n", after.Data.Capacity, after.Data.Registered, after.Data.Waitlisted)
	for _, v := range violations {
		fmt.Printf("  VIOLATION: %s\n", v)
	}
}
