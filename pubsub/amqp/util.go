package amqp

import "math/rand"

const (
	letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tagRandLen  = 10
)

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		// nolint: gosec
		b[i] = letterBytes[rand.Int63()%int64(len(letterBytes))]
	}
	return string(b)
}

func consumerTag(queue string) string {
	return "pubsubfacade." + queue + "." + randString(tagRandLen)
}
