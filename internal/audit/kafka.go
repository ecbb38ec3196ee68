package audit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"spapi/internal/platform/config"
)

// KafkaSender writes audit records to the sporingslogg topic. Produces are
// synchronous with leader acknowledgement and at most one in-flight request
// per broker, so records for the same partition keep their order for later
// reconciliation.
type KafkaSender struct {
	client *kgo.Client
	topic  string
}

func NewKafkaSender(ctx context.Context, cfg config.Kafka, logger *slog.Logger) (*KafkaSender, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.LeaderAck()),
		kgo.DisableIdempotentWrite(),
		kgo.MaxProduceRequestsInflightPerBroker(1),
	}
	if cfg.CAPath != "" {
		tlsConfig, err := newTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	// The topic is provisioned out of band; a missing topic is a
	// deployment problem worth surfacing at startup rather than on the
	// first disclosure.
	topics, err := kadm.NewClient(client).ListTopics(ctx, cfg.Topic)
	if err != nil {
		logger.Warn("klarte ikke verifisere sporingslogg-topic", "topic", cfg.Topic, "error", err)
	} else if !topics.Has(cfg.Topic) {
		client.Close()
		return nil, fmt.Errorf("sporingslogg topic %s finnes ikke", cfg.Topic)
	}

	return &KafkaSender{client: client, topic: cfg.Topic}, nil
}

func (s *KafkaSender) Send(ctx context.Context, record []byte) error {
	return s.client.ProduceSync(ctx, &kgo.Record{Topic: s.topic, Value: record}).FirstErr()
}

func (s *KafkaSender) Close() {
	s.client.Close()
}

func newTLSConfig(cfg config.Kafka) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("kafka client certificate: %w", err)
	}
	ca, err := os.ReadFile(cfg.CAPath)
	if err != nil {
		return nil, fmt.Errorf("kafka ca certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("kafka ca certificate: no PEM data in %s", cfg.CAPath)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool}, nil
}
