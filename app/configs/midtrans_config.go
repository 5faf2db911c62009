package configs

import (
	"log"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// NewSnapClient returns nil when no server key is configured.
func NewSnapClient(env ENV) *snap.Client {
	if env.MidtransServerKey == "" {
		log.Println("Midtrans server key not set, payment links are disabled.")
		return nil
	}

	environment := midtrans.Sandbox
	if env.MidtransProduction {
		environment = midtrans.Production
	}

	var client snap.Client
	client.New(env.MidtransServerKey, environment)
	midtrans.ClientKey = env.MidtransClientKey

	log.Println("✅ Midtrans Snap Client initialized.")
	return &client
}
