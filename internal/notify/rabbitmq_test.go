package notify

import (
	"context"
	"testing"
)

func TestRabbitMQCheckFailsWithoutConnection(t *testing.T) {
	var p RabbitMQPublisher
	if err := p.Check(context.Background()); err == nil {
		t.Fatalf("expected a disconnected publisher to fail its check")
	}
}
