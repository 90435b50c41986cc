// Package pubsub wraps the Pub/Sub v2 client with the topics and subscriptions this
// service uses.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

var errNotConnected = errors.New("pubsub client not initialized")

type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient connects and fails unless every configured subscription exists. Processes
// that only publish leave the subscriptions empty.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errors.New("gcp project id is required")
	}
	ps, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:     ps,
		projectID:  projectID,
		cfg:        cfg,
		publishers: map[string]*pubsub.Publisher{},
	}
	if err := c.checkSubscriptions(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "subscriptions", subscriptionNames(cfg)), "pubsub client initialized")
	}
	return c, nil
}

func subscriptionNames(cfg config.PubSubConfig) []string {
	var names []string
	for _, name := range []string{cfg.ApprovalsSubscription, cfg.AuditSubscription} {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (c *Client) checkSubscriptions(ctx context.Context) error {
	for _, name := range subscriptionNames(c.cfg) {
		req := &pubsubpb.GetSubscriptionRequest{Subscription: resourceName(c.projectID, kindSubscription, name)}
		if _, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, req); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("subscription %q does not exist", name)
			}
			return fmt.Errorf("checking subscription %q: %w", name, err)
		}
	}
	return nil
}

// resourceName expands a short id into projects/<project>/<kind>/<id>. Full resource
// names pass through unchanged.
func resourceName(projectID, kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	return "projects/" + projectID + "/" + kind + "/" + name
}

// Subscription returns a subscriber for name with flow control applied, or nil when name
// is blank.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil || strings.TrimSpace(name) == "" {
		return nil
	}
	sub := c.client.Subscriber(resourceName(c.projectID, kindSubscription, name))
	if c.cfg.MaxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = c.cfg.MaxOutstanding
	}
	return sub
}

// ApprovalsSubscription carries operator approval decisions.
func (c *Client) ApprovalsSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.ApprovalsSubscription)
}

// AuditSubscription carries unresolved-approval records.
func (c *Client) AuditSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.AuditSubscription)
}

// Publisher returns the shared publisher for topic. Publishers batch internally, so one
// handle per topic is reused and flushed on Close.
func (c *Client) Publisher(topic string) *pubsub.Publisher {
	if c == nil || c.client == nil || strings.TrimSpace(topic) == "" {
		return nil
	}
	full := resourceName(c.projectID, kindTopic, topic)
	c.mu.Lock()
	defer c.mu.Unlock()
	if pub, ok := c.publishers[full]; ok {
		return pub
	}
	pub := c.client.Publisher(full)
	c.publishers[full] = pub
	return pub
}

// EventRoutes maps each emitted event type to its topic. Types whose topic is unset are
// left out. Approve and discard share the approvals topic.
func (c *Client) EventRoutes() map[enums.EventType]*pubsub.Publisher {
	topics := map[enums.EventType]string{
		enums.EventVerificationRequested:  c.cfg.VerificationTopic,
		enums.EventVerificationApproved:   c.cfg.ApprovalsTopic,
		enums.EventVerificationDiscarded:  c.cfg.ApprovalsTopic,
		enums.EventVerificationUnresolved: c.cfg.AuditTopic,
	}
	routes := make(map[enums.EventType]*pubsub.Publisher, len(topics))
	for eventType, topic := range topics {
		if pub := c.Publisher(topic); pub != nil {
			routes[eventType] = pub
		}
	}
	return routes
}

// Ping re-checks that the configured subscriptions exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotConnected
	}
	return c.checkSubscriptions(ctx)
}

// Close flushes every publisher before closing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for name, pub := range c.publishers {
		pub.Stop()
		delete(c.publishers, name)
	}
	c.mu.Unlock()
	return c.client.Close()
}
