package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/entitlement"
	"github.com/nftpulse/notifier/internal/imaging"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/store"
	"github.com/nftpulse/notifier/internal/store/schema"
	"github.com/nftpulse/notifier/internal/telegram"
)

// Dispatcher fans one activity out to every eligible recipient. Each
// recipient is isolated: one failed or gone chat never blocks the rest
// of the fan-out.
type Dispatcher struct {
	store     store.Store
	messenger telegram.Messenger
	gate      *entitlement.Gate
	images    *imaging.Pipeline
	pool      pond.Pool
}

// NewDispatcher creates a dispatcher running sends on the given pool
func NewDispatcher(st store.Store, messenger telegram.Messenger, gate *entitlement.Gate, images *imaging.Pipeline, pool pond.Pool) *Dispatcher {
	return &Dispatcher{
		store:     st,
		messenger: messenger,
		gate:      gate,
		images:    images,
		pool:      pool,
	}
}

// Dispatch sends the activity to all subscribed users and, when the
// collection is trending, to broadcast channels. It blocks until every
// send finished. A failed image resolution aborts the whole fan-out:
// the notification is never delivered without its image.
func (d *Dispatcher) Dispatch(ctx context.Context, token *schema.TrackedToken, activity *domain.Activity) error {
	resolution, err := d.resolveImage(ctx, token, activity)
	if err != nil {
		return err
	}
	group := d.pool.NewGroup()

	d.dispatchUsers(ctx, group, token, activity, resolution)
	d.dispatchChannels(ctx, group, token, activity, resolution)

	if err := group.Wait(); err != nil {
		logger.WarnCtx(ctx, "Fan-out finished with failed sends",
			zap.String("contract", token.ContractAddress),
			zap.String("type", string(activity.Type)),
			zap.Error(err))
	}

	d.images.ScheduleCleanup(ctx, resolution)
	return nil
}

// resolveImage resolves the notification image
func (d *Dispatcher) resolveImage(ctx context.Context, token *schema.TrackedToken, activity *domain.Activity) (*imaging.Resolution, error) {
	imageURL := ""
	if token.ImageURL != nil {
		imageURL = *token.ImageURL
	}

	paid := imageURL != "" && d.gate.IsImageFeeActive(ctx, token.ContractAddress)

	resolution, err := d.images.Resolve(ctx, &imaging.Request{
		ImageURL: imageURL,
		Name:     token.ContractAddress,
		Paid:     paid,
	})
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to resolve notification image, aborting fan-out"), zap.Error(err),
			zap.String("contract", token.ContractAddress),
			zap.Bool("paid", paid))
		return nil, fmt.Errorf("failed to resolve notification image for %s: %w", token.ContractAddress, err)
	}
	return resolution, nil
}

// dispatchUsers submits one send per deliverable subscription
func (d *Dispatcher) dispatchUsers(ctx context.Context, group pond.TaskGroup, token *schema.TrackedToken, activity *domain.Activity, resolution *imaging.Resolution) {
	subscriptions, err := d.store.GetSubscriptionsForToken(ctx, token.ID)
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to load subscriptions"), zap.Error(err),
			zap.String("contract", token.ContractAddress))
		return
	}

	text := Format(token, activity, false)
	opts := ButtonFor(activity)

	for i := range subscriptions {
		sub := subscriptions[i]
		group.SubmitErr(func() error {
			err := d.send(ctx, sub.ChatID, text, opts, resolution)
			if errors.Is(err, domain.ErrRecipientGone) {
				logger.InfoCtx(ctx, "Deactivating unreachable user",
					zap.Int64("user_id", sub.UserID),
					zap.Int64("chat_id", sub.ChatID),
					zap.Error(err))
				if deactivateErr := d.store.DeactivateUser(ctx, sub.UserID); deactivateErr != nil {
					logger.ErrorCtx(ctx, errors.New("failed to deactivate user"), zap.Error(deactivateErr),
						zap.Int64("user_id", sub.UserID))
				}
				return nil
			}
			if err != nil {
				logger.ErrorCtx(ctx, errors.New("failed to notify user"), zap.Error(err),
					zap.Int64("chat_id", sub.ChatID))
				return err
			}
			return nil
		})
	}
}

// dispatchChannels submits one send per eligible broadcast channel.
// Trending is re-verified right before each send so an entitlement that
// lapsed mid-flight does not reach channels.
func (d *Dispatcher) dispatchChannels(ctx context.Context, group pond.TaskGroup, token *schema.TrackedToken, activity *domain.Activity, resolution *imaging.Resolution) {
	decision, err := d.gate.EvaluateChannels(ctx, token.ContractAddress)
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to evaluate channel eligibility"), zap.Error(err),
			zap.String("contract", token.ContractAddress))
		return
	}
	if !decision.Notify {
		logger.DebugCtx(ctx, "Skipping channel broadcast",
			zap.String("contract", token.ContractAddress),
			zap.String("reason", decision.Reason))
		return
	}

	text := Format(token, activity, true)
	opts := ButtonFor(activity)

	for i := range decision.Channels {
		channel := decision.Channels[i]
		group.SubmitErr(func() error {
			if !d.gate.IsTrending(ctx, token.ContractAddress) {
				logger.InfoCtx(ctx, "Trending lapsed before channel send, suppressing",
					zap.String("contract", token.ContractAddress),
					zap.Int64("chat_id", channel.ChatID))
				return nil
			}

			err := d.send(ctx, channel.ChatID, text, opts, resolution)
			if errors.Is(err, domain.ErrRecipientGone) {
				logger.InfoCtx(ctx, "Deactivating unreachable channel",
					zap.Int64("channel_id", channel.ID),
					zap.Int64("chat_id", channel.ChatID),
					zap.Error(err))
				if deactivateErr := d.store.DeactivateChannel(ctx, channel.ID); deactivateErr != nil {
					logger.ErrorCtx(ctx, errors.New("failed to deactivate channel"), zap.Error(deactivateErr),
						zap.Int64("channel_id", channel.ID))
				}
				return nil
			}
			if err != nil {
				logger.ErrorCtx(ctx, errors.New("failed to notify channel"), zap.Error(err),
					zap.Int64("chat_id", channel.ChatID))
				return err
			}
			return nil
		})
	}
}

// send delivers one message, with the image when one was resolved
func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions, resolution *imaging.Resolution) error {
	if resolution != nil {
		return d.messenger.SendPhoto(ctx, chatID, resolution.Path, text, opts)
	}
	return d.messenger.SendMessage(ctx, chatID, text, opts)
}
