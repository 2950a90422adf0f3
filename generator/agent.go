package generator

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"site_cms/metrics"
)

var ErrEmptyTopic = errors.New("draft topic is required")

// Agent produces and revises drafts from a Spec and reviewer feedback.
type Agent struct {
	llm    LLMClient
	logger *logrus.Logger
}

func NewAgent(llm LLMClient, logger *logrus.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Agent{llm: llm, logger: logger}, nil
}

// Generate writes a first draft when prevDraft is nil and a revision
// otherwise.
func (a *Agent) Generate(ctx context.Context, spec Spec, prevDraft *Draft, history []Turn, comment string) (draft Draft, err error) {
	defer func() {
		metrics.DraftRequests.WithLabelValues(metrics.Result(err)).Inc()
	}()
	if strings.TrimSpace(spec.Topic) == "" && prevDraft == nil {
		return Draft{}, ErrEmptyTopic
	}

	var prompt Prompt
	if prevDraft == nil {
		prompt = BuildInitialPrompt(spec)
	} else {
		prompt = BuildRevisionPrompt(spec, *prevDraft, comment, history)
	}

	log := a.logger.WithFields(logrus.Fields{"topic": spec.Topic, "revision": prevDraft != nil})
	log.Debug("requesting draft")

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("llm completion failed")
		return Draft{}, err
	}
	draft, err = PostProcess(raw)
	if err != nil {
		log.WithError(err).Warn("unusable draft")
		return Draft{}, err
	}
	log.WithField("title", draft.Title).Info("draft generated")
	return draft, nil
}
