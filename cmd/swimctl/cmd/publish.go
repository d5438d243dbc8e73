package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tehsphinx/pubsubfacade"
	"github.com/tehsphinx/pubsubfacade/container"
)

var (
	publishTopic   string
	publishMessage string
	publishCount   int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish messages on a topic, creating the topic if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		publisher, err := pubsubfacade.NewPublisherFromConfig(ctx, configFile, facadeOptions(ctx)...)
		if err != nil {
			return err
		}
		defer publisher.Stop()

		if r := publisher.Start(ctx, true); r != nil {
			return r
		}

		m := textMessenger(publishTopic)
		topic, err := publisher.AddTopicMessenger(ctx, m)
		if err != nil {
			return err
		}
		fmt.Printf("publishing %d messages on %s (topic %v)\n", publishCount, topic.Name, topic.ID)

		for i := 0; i < publishCount; i++ {
			msg := publishMessage
			if publishCount > 1 {
				msg = fmt.Sprintf("%s (%d)", publishMessage, i+1)
			}
			if r := publisher.PublishTopicMessenger(ctx, m, msg); r != nil {
				return r
			}
			fmt.Println("published:", msg)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishTopic, "topic", "t", "", "name of the topic to publish on")
	publishCmd.Flags().StringVarP(&publishMessage, "message", "m", "Hello, World!", "message to publish")
	publishCmd.Flags().IntVarP(&publishCount, "count", "n", 1, "number of messages to publish")
	_ = publishCmd.MarkFlagRequired("topic")
}

// textMessenger sends the string handed to PublishTopicMessenger as is.
func textMessenger(topic string) container.Messenger {
	return container.Messenger{
		ID: topic,
		Produce: func(_ context.Context, msgCtx any) ([]byte, error) {
			s, ok := msgCtx.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected message context %T", msgCtx)
			}
			return []byte(s), nil
		},
	}
}
