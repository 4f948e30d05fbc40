package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/epw-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/epw-viewer/internal/config"
	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/observability"
	"github.com/couchcryptid/epw-viewer/internal/pipeline"
)

func newPublishCmd() *cobra.Command {
	var (
		table   tableFlags
		brokers []string
		topic   string
	)
	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Publish the rows of a derived table to Kafka",
		Long: `Decode an EPW file, build the derived table selected by the flags and
write one JSON message per row to the Kafka topic. Brokers, topic and batch
size come from KAFKA_BROKERS, KAFKA_TOPIC and BATCH_SIZE unless overridden.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(brokers) > 0 {
				cfg.KafkaBrokers = brokers
			}
			if topic != "" {
				cfg.KafkaTopic = topic
			}

			req, err := table.request(cmd)
			if err != nil {
				return err
			}
			file, err := decodeArg(cmd, args[0], table.decodeOptions()...)
			if err != nil {
				return err
			}
			t, err := derive.Build(file.Records, req)
			if err != nil {
				return err
			}

			logger := observability.NewLogger(cfg)
			metrics := observability.NewMetrics()

			writer := kafkaadapter.NewWriter(cfg, logger)
			defer func() {
				if err := writer.Close(); err != nil {
					logger.Error("kafka writer close error", "error", err)
				}
			}()

			publisher := pipeline.NewPublisher(writer, nil, logger, metrics, cfg.BatchSize)
			n, err := publisher.Publish(cmd.Context(), file.Location, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d messages to %s\n", n, cfg.KafkaTopic)
			return nil
		},
	}
	table.register(cmd)
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka bootstrap brokers")
	cmd.Flags().StringVar(&topic, "topic", "", "Kafka topic")
	return cmd
}
