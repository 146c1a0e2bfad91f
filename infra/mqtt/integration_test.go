package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegration publishes a summary to a real Mosquitto broker and reads it back.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	brokerURL := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(brokerURL).SetClientID("sub"))
	var tok paho.Token
	for i := 0; i < 5; i++ {
		tok = sub.Connect()
		if tok.Wait() && tok.Error() == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if tok.Error() != nil {
		t.Fatalf("failed to connect subscriber: %v", tok.Error())
	}
	defer sub.Disconnect(250)

	msgCh := make(chan []byte, 1)
	if tok := sub.Subscribe("pvshadow/#", 1, func(_ paho.Client, m paho.Message) {
		msgCh <- m.Payload()
	}); tok.Wait() && tok.Error() != nil {
		t.Fatalf("failed to subscribe: %v", tok.Error())
	}

	pub, err := NewPahoPublisher(Config{Broker: brokerURL, ClientID: "pub", QoS: 1})
	if err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	defer func() { _ = pub.Close() }()

	if err := pub.RecordShadowRun(ctx, sampleEvent()); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	select {
	case got := <-msgCh:
		var msg SummaryMessage
		if err := json.Unmarshal(got, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.RunID != "run-1" || msg.Tilt != 30 {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}
