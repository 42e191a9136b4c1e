package telegram

import (
	"fmt"
	"time"

	coreconfig "github.com/zhukata/shopbot/core/config"

	tele "gopkg.in/telebot.v4"
)

// storefrontUpdates lists the update kinds this bot consumes. Keeping the
// list explicit means Telegram never queues update types nothing handles,
// and pre_checkout_query is guaranteed to be delivered for payments.
var storefrontUpdates = []string{
	"message",
	"callback_query",
	"inline_query",
	"pre_checkout_query",
}

// BuildPoller selects the update source from config: a webhook listener
// when run_mode is webhook, a long poller otherwise.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:         fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
			AllowedUpdates: storefrontUpdates,
		}
	}

	timeout := cfg.Telegram.LongPollTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	return &tele.LongPoller{
		Timeout:        time.Duration(timeout) * time.Second,
		AllowedUpdates: storefrontUpdates,
	}
}
