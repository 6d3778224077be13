package profile_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

/*
 * Container setup and shared assertions for the profile service
 * end-to-end tests.
 */

const (
	testImageName = "reels-profile-test:latest"
	testIssuer    = "reels-profile-e2e"
)

// TestMain builds the image once before all tests and removes it afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Profile Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Profile Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/profile/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// relaxedLimits lifts every rate limit tier so flows with many requests do
// not trip them.
func relaxedLimits() map[string]string {
	env := map[string]string{}
	for _, tier := range []string{"STRICT", "MODERATE", "LENIENT"} {
		env["RATELIMIT_"+tier+"_REQUESTS"] = "1000"
		env["RATELIMIT_"+tier+"_BURST"] = "1000"
	}
	return env
}

// setupProfileContainer starts the service and returns a client for it.
// Pass nil overrides to keep production rate limits.
func setupProfileContainer(t *testing.T, overrides map[string]string) *profilesdk.Client {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"PROFILE_ISSUER":        testIssuer,
		"PROFILE_KEY_ID":        "reels-profile-key-001",
		"PROFILE_DATABASE_FILE": "/tmp/profile.db",
		"ENV":                   "test",
		"LOG_LEVEL":             "info",
		"LOG_FORMAT":            "json",
	}
	for k, v := range overrides {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return profilesdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()), slogx.Discard())
}

func newRegistration(email, phone string) profilesdk.RegisterRequest {
	return profilesdk.RegisterRequest{
		Name:            "E2E User",
		Email:           email,
		Phone:           phone,
		DateOfBirth:     "1992-11-03",
		Gender:          "transgender",
		IsEmailVerified: email != "",
		IsPhoneVerified: phone != "",
	}
}

func assertHealthy(t *testing.T, health *profilesdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, profilesdk.StatusCode(err), "unexpected error: %v", err)
}
