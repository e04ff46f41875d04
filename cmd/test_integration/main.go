package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Smoke Test...")

	ownerID := fmt.Sprintf("smoke-owner-%d", time.Now().Unix())

	// 1. Seed background memories
	fmt.Println("1. Seeding background memories...")
	seed := map[string]interface{}{
		"owner_id":   ownerID,
		"name":       "Elena Rodriguez",
		"occupation": "marine biologist",
		"biography": map[string]string{
			"early_life": "She grew up in a small fishing town on the Pacific coast.",
			"education":  "She studied marine biology and earned a PhD in coral ecology.",
			"career":     "Her research on reef restoration became her life's work.",
		},
	}
	if !sendRequest("POST", "/seed", seed) {
		fmt.Println("FAILED: Seed")
		os.Exit(1)
	}
	fmt.Println("PASSED: Seed")

	// 2. Evaluate a significant exchange
	fmt.Println("2. Evaluating exchange...")
	exchange := map[string]interface{}{
		"owner_id":       ownerID,
		"user_text":      "I'm terrified the reefs I love will die before my daughter sees them",
		"character_text": "That fear drives everything I do",
		"signal":         map[string]interface{}{"overall_intensity": 0.8},
	}
	if !sendRequest("POST", "/exchange", exchange) {
		fmt.Println("FAILED: Exchange")
		os.Exit(1)
	}
	fmt.Println("PASSED: Exchange")

	// 3. Build conversation context
	fmt.Println("3. Building context...")
	ctxReq := map[string]interface{}{
		"owner_id": ownerID,
		"themes":   []string{"research"},
	}
	if !sendRequest("POST", "/context", ctxReq) {
		fmt.Println("FAILED: Context")
		os.Exit(1)
	}
	fmt.Println("PASSED: Context")

	// 4. Network analytics
	fmt.Println("4. Analyzing network...")
	if !sendRequest("GET", "/network/"+ownerID, nil) {
		fmt.Println("FAILED: Network")
		os.Exit(1)
	}
	fmt.Println("PASSED: Network")

	// 5. Rebuild relationship edges
	fmt.Println("5. Rebuilding edges...")
	if !sendRequest("POST", "/maintenance/rebuild", map[string]string{"owner_id": ownerID}) {
		fmt.Println("FAILED: Rebuild")
		os.Exit(1)
	}
	fmt.Println("PASSED: Rebuild")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
