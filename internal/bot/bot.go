package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"waitlist-referral/internal/referral"
	"waitlist-referral/internal/rewards"
)

// Referrals is the read side of referral.Service used by the bot.
type Referrals interface {
	Info(ctx context.Context, code string) (*referral.Info, error)
	Rewards() rewards.Table
}

type Bot struct {
	Instance  *telego.Bot
	Referrals Referrals
}

func NewBot(token string, referrals Referrals) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:  tgBot,
		Referrals: referrals,
	}, nil
}

// Start long-polls Telegram until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	// /start <code> arrives from deep links; /referrals <code> is typed by hand
	handler.Handle(b.handleReferrals, th.Or(th.CommandEqual("start"), th.CommandEqual("referrals")))

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		_, err := ctx.Bot().SendMessage(ctx, tu.Message(
			tu.ID(update.Message.Chat.ID),
			FormatRewards(b.Referrals.Rewards()),
		))
		return err
	}, th.CommandEqual("rewards"))

	go func() {
		<-ctx.Done()
		_ = handler.Stop()
	}()

	log.Println("Telegram bot started")
	return handler.Start()
}

func (b *Bot) handleReferrals(ctx *th.Context, update telego.Update) error {
	message := update.Message
	code := commandArg(message.Text)

	var text string
	if code == "" {
		text = "Send /referrals <your referral code> to see how many friends joined."
	} else {
		info, err := b.Referrals.Info(ctx, code)
		switch {
		case err == nil:
			text = FormatInfo(info)
		case errors.Is(err, referral.ErrUserNotFound):
			text = "❌ No waitlist signup uses that referral code."
		default:
			log.Printf("Failed to load referral info for %q: %v", code, err)
			text = "❌ Could not load referral info, try again later."
		}
	}

	_, err := ctx.Bot().SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), text))
	return err
}

// commandArg returns the first argument of a bot command.
func commandArg(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func FormatInfo(info *referral.Info) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🤝 Referral program\n\n👥 Friends joined: %d\n", info.ReferralCount)

	if best := info.Rewards.Best; best != nil {
		fmt.Fprintf(&sb, "🏆 Current reward: %s\n", best.Reward)
	}
	if next := info.Rewards.Next; next != nil {
		fmt.Fprintf(&sb, "🎯 Next: %s (%d more)\n", next.Reward, info.Rewards.Remaining)
	}

	fmt.Fprintf(&sb, "\n🔗 Your link:\n%s", info.ReferralLink)
	return sb.String()
}

func FormatRewards(table rewards.Table) string {
	if len(table.Tiers) == 0 {
		return "No rewards are configured yet."
	}
	var sb strings.Builder
	sb.WriteString("🎁 Rewards")
	for _, t := range table.Tiers {
		fmt.Fprintf(&sb, "\n%d referrals: %s", t.Threshold, t.Reward)
	}
	return sb.String()
}
