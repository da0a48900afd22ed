package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/geo"
)

// simUser is a signed-up simulator account.
type simUser struct {
	ID    string
	Email string
	Token string
}

// simConfig holds the simulator knobs read from the environment.
type simConfig struct {
	APIURL       string
	Users        int
	Cafes        int
	Interval     time.Duration
	RegistryPath string
}

var cafePrefixes = []string{"Blue Bottle", "Daily Grind", "Bean There", "Drip", "Roast House", "Crema", "Pour Over", "Common Grounds"}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func jitterLocation(base geo.Point, meters float64) geo.Point {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return geo.Point{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

// randomCafeLocation picks a registry metro and a point within a few
// kilometres of it.
func randomCafeLocation(registry geo.Registry) (geo.NamedLocation, geo.Point) {
	metro := registry[rand.Intn(len(registry))]
	return metro, jitterLocation(metro.Point(), 5000)
}

func authorizedRequest(ctx context.Context, method, url, token string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return httpClient.Do(req)
}

func decodeCreated(resp *http.Response, what string, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s failed with status: %d", what, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", what, err)
	}
	return nil
}

func signUp(ctx context.Context, apiURL string, n int) (simUser, error) {
	email := fmt.Sprintf("sim-%d-%s@example.com", n, uuid.NewString()[:8])
	resp, err := authorizedRequest(ctx, http.MethodPost, apiURL+"/auth/signup", "", map[string]string{
		"email":      email,
		"password":   "simulator-password",
		"first_name": "Sim",
		"last_name":  strconv.Itoa(n),
	})
	if err != nil {
		return simUser{}, fmt.Errorf("failed to sign up: %w", err)
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := decodeCreated(resp, "sign up", &result); err != nil {
		return simUser{}, err
	}
	if result.Token == "" {
		return simUser{}, fmt.Errorf("sign up returned no token")
	}

	log.WithFields(log.Fields{"user_id": result.User.ID, "email": email}).Info("Signed up user")
	return simUser{ID: result.User.ID, Email: email, Token: result.Token}, nil
}

func createCafe(ctx context.Context, apiURL string, user simUser, name string, p geo.Point) (string, error) {
	resp, err := authorizedRequest(ctx, http.MethodPost, apiURL+"/cafes", user.Token, map[string]any{
		"name": name,
		"lat":  p.Lat,
		"long": p.Lon,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create cafe: %w", err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeCreated(resp, "cafe creation", &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("invalid cafe ID in response")
	}
	return result.ID, nil
}

func likeCafe(ctx context.Context, apiURL string, user simUser, cafeID string) (string, error) {
	resp, err := authorizedRequest(ctx, http.MethodPost, apiURL+"/cafes/"+cafeID+"/likes", user.Token, nil)
	if err != nil {
		return "", fmt.Errorf("failed to like cafe: %w", err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeCreated(resp, "like", &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

func unlike(ctx context.Context, apiURL string, user simUser, likeID string) (bool, error) {
	resp, err := authorizedRequest(ctx, http.MethodDelete, apiURL+"/likes/"+likeID, user.Token, nil)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("like deletion failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode like deletion response: %w", err)
	}
	return result.Deleted, nil
}

// seedCafes creates count cafes around random metros and logs how far each
// landed from its nearest metro.
func seedCafes(ctx context.Context, apiURL string, user simUser, registry geo.Registry, count int) []string {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		metro, p := randomCafeLocation(registry)
		name := fmt.Sprintf("%s %s #%d", cafePrefixes[rand.Intn(len(cafePrefixes))], metro.Name, i+1)

		id, err := createCafe(ctx, apiURL, user, name, p)
		if err != nil {
			log.WithError(err).Error("Failed to create cafe")
			continue
		}
		ids = append(ids, id)

		nearest, _ := geo.NearestLocation(p.Lat, p.Lon, registry)
		log.WithFields(log.Fields{
			"cafe_id":        id,
			"name":           name,
			"seed_metro":     metro.Slug,
			"nearest_metro":  nearest.Slug,
			"distance_miles": math.Round(nearest.DistanceMiles*100) / 100,
		}).Info("Created cafe")
	}
	return ids
}

// simulateUser likes random cafes every interval and occasionally takes a
// like back, until ctx is cancelled.
func simulateUser(ctx context.Context, apiURL string, user simUser, cafeIDs []string, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	var likes []string
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		if len(likes) > 0 && rand.Float64() < 0.2 {
			i := rand.Intn(len(likes))
			deleted, err := unlike(ctx, apiURL, user, likes[i])
			if err != nil {
				log.WithError(err).WithField("user_id", user.ID).Warn("Failed to delete like")
				continue
			}
			log.WithFields(log.Fields{"user_id": user.ID, "like_id": likes[i], "deleted": deleted}).Info("Deleted like")
			likes = append(likes[:i], likes[i+1:]...)
			continue
		}

		cafeID := cafeIDs[rand.Intn(len(cafeIDs))]
		likeID, err := likeCafe(ctx, apiURL, user, cafeID)
		if err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("Failed to like cafe")
			continue
		}
		likes = append(likes, likeID)
		log.WithFields(log.Fields{"user_id": user.ID, "cafe_id": cafeID, "like_id": likeID}).Info("Liked cafe")
	}
}

func envInt(key string, defaultVal, minVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= minVal {
			return n
		}
		log.WithField(key, v).Warn("Ignoring invalid value")
	}
	return defaultVal
}

func loadSimConfig() simConfig {
	cfg := simConfig{
		APIURL:       os.Getenv("API_BASE_URL"),
		Users:        envInt("SIM_USERS", 5, 1),
		Cafes:        envInt("SIM_CAFES", 20, 1),
		Interval:     time.Duration(envInt("SIM_TICK_SECONDS", 2, 1)) * time.Second,
		RegistryPath: os.Getenv("METRO_REGISTRY_PATH"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8080/api"
	}
	return cfg
}

// run seeds users and cafes, then drives likes until ctx is cancelled.
func run(ctx context.Context, cfg simConfig) error {
	registry, err := geo.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return err
	}
	if len(registry) == 0 {
		return fmt.Errorf("metro registry is empty")
	}

	users := make([]simUser, 0, cfg.Users)
	for i := 0; i < cfg.Users; i++ {
		user, err := signUp(ctx, cfg.APIURL, i+1)
		if err != nil {
			log.WithError(err).Error("Failed to sign up user")
			continue
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return fmt.Errorf("no users created; is the API reachable at %s?", cfg.APIURL)
	}

	cafeIDs := seedCafes(ctx, cfg.APIURL, users[0], registry, cfg.Cafes)
	log.WithFields(log.Fields{"users": len(users), "cafes": len(cafeIDs)}).Info("Seeding completed")
	if len(cafeIDs) == 0 {
		return fmt.Errorf("no cafes created")
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u simUser) {
			defer wg.Done()
			simulateUser(ctx, cfg.APIURL, u, cafeIDs, cfg.Interval)
		}(u)
	}
	log.Info("Like simulation started")
	wg.Wait()
	return nil
}

func main() {
	cfg := loadSimConfig()
	log.WithFields(log.Fields{
		"api_url":  cfg.APIURL,
		"users":    cfg.Users,
		"cafes":    cfg.Cafes,
		"interval": cfg.Interval,
	}).Info("Starting cafe simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
	log.Info("Simulation stopped")
}
