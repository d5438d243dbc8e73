package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tehsphinx/pubsubfacade"
	"github.com/tehsphinx/pubsubfacade/pubsub"
)

var subscribeTopic string

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe to a topic and print its messages until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		subscriber, err := pubsubfacade.NewSubscriberFromConfig(ctx, configFile, facadeOptions(ctx)...)
		if err != nil {
			return err
		}
		defer subscriber.Stop()

		if r := subscriber.Start(ctx, true); r != nil {
			return r
		}

		sub, err := subscriber.Subscribe(ctx, subscribeTopic, func(_ context.Context, msg pubsub.Replier) {
			fmt.Printf("%s: %s\n", msg.Subject(), msg.Data())
		})
		if err != nil {
			return err
		}

		fmt.Printf("subscribed to %s (subscription %v, queue %s)\n", subscribeTopic, sub.ID, sub.Queue)
		fmt.Println("press Ctrl+C to unsubscribe and exit")
		<-ctx.Done()

		// ctx is cancelled by now
		return subscriber.Unsubscribe(context.Background(), sub)
	},
}

func init() {
	subscribeCmd.Flags().StringVarP(&subscribeTopic, "topic", "t", "", "name of the topic to subscribe to")
	_ = subscribeCmd.MarkFlagRequired("topic")
}
