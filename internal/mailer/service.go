package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
)

// Service relays transactional email for the platform: single sends and the
// bulk fund-call (appel de fond) broadcasts to copropriety lot owners.
type Service struct {
	sender Sender
}

// NewService creates a new mailer Service
func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// Send delivers one transactional email.
func (s *Service) Send(ctx context.Context, req *dto.SendEmailRequest) error {
	return s.sender.Send(ctx, &Message{
		From:        req.From,
		To:          req.To,
		Subject:     req.Subject,
		HTML:        req.HTML,
		Attachments: req.Attachments,
	})
}

// SendBulk personalizes and delivers the template to every recipient. One
// failed recipient does not abort the batch; each outcome is reported
// individually.
func (s *Service) SendBulk(ctx context.Context, req *dto.SendBulkEmailRequest) *dto.SendBulkEmailResponse {
	resp := &dto.SendBulkEmailResponse{
		Results: make([]dto.BulkSendResult, 0, len(req.Recipients)),
	}

	for _, recipient := range req.Recipients {
		msg := &Message{
			From:        req.From,
			To:          recipient.Email,
			Subject:     Personalize(req.Subject, recipient),
			HTML:        Personalize(req.HTML, recipient),
			Attachments: req.Attachments,
		}

		if err := s.sender.Send(ctx, msg); err != nil {
			logger.Warn("bulk email delivery failed",
				zap.String("recipient", recipient.Email),
				zap.Bool("appel_de_fond", req.AppelDeFond),
				zap.Error(err))
			resp.Failed++
			resp.Results = append(resp.Results, dto.BulkSendResult{
				Email:   recipient.Email,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}

		resp.Sent++
		resp.Results = append(resp.Results, dto.BulkSendResult{
			Email:   recipient.Email,
			Success: true,
		})
	}

	return resp
}
