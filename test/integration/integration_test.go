package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

var (
	serviceURL   = getEnv("AUTH_SERVICE_URL", "http://localhost:5000")
	testUserName = fmt.Sprintf("test-user-%d", time.Now().UnixNano())
	testShopName = fmt.Sprintf("test shop %d", time.Now().UnixNano())
	testPassword = "testPassword123"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		fmt.Println("Skipping integration tests. Set INTEGRATION_TEST=true to run.")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func postJSON(t *testing.T, client *http.Client, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	resp, err := client.Post(serviceURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request to %s failed: %v", path, err)
	}
	return resp
}

func TestLiveness(t *testing.T) {
	resp, err := http.Get(serviceURL + "/")
	if err != nil {
		t.Fatalf("liveness check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestSignupSigninUserinfoLogout(t *testing.T) {
	client := newClient(t)

	resp := postJSON(t, client, "/api/signup", map[string]interface{}{
		"userName":  testUserName,
		"password":  testPassword,
		"shopNames": []string{testShopName},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d", resp.StatusCode)
	}

	resp = postJSON(t, client, "/api/signin", map[string]interface{}{
		"userName": testUserName,
		"password": testPassword,
		"remember": false,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signin: expected 200, got %d", resp.StatusCode)
	}

	infoResp, err := client.Get(serviceURL + "/api/userinfo")
	if err != nil {
		t.Fatalf("userinfo request failed: %v", err)
	}
	defer infoResp.Body.Close()
	if infoResp.StatusCode != http.StatusOK {
		t.Fatalf("userinfo: expected 200, got %d", infoResp.StatusCode)
	}

	var info struct {
		Success bool `json:"success"`
		User    struct {
			UserName string `json:"userName"`
		} `json:"user"`
	}
	if err := json.NewDecoder(infoResp.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode userinfo: %v", err)
	}
	if info.User.UserName != testUserName {
		t.Errorf("expected userName %s, got %s", testUserName, info.User.UserName)
	}

	resp = postJSON(t, client, "/api/logout", map[string]interface{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	afterResp, err := client.Get(serviceURL + "/api/userinfo")
	if err != nil {
		t.Fatalf("userinfo after logout failed: %v", err)
	}
	afterResp.Body.Close()
	if afterResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("userinfo after logout: expected 401, got %d", afterResp.StatusCode)
	}
}

func TestSigninWrongPassword(t *testing.T) {
	client := newClient(t)

	resp := postJSON(t, client, "/api/signin", map[string]interface{}{
		"userName": testUserName,
		"password": "definitely-wrong",
		"remember": false,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSignupDuplicateShopName(t *testing.T) {
	client := newClient(t)

	resp := postJSON(t, client, "/api/signup", map[string]interface{}{
		"userName":  testUserName + "-other",
		"password":  testPassword,
		"shopNames": []string{"  " + testShopName + " "},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate shop name, got %d", resp.StatusCode)
	}
}
