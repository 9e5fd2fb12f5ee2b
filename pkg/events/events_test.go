package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiPublishesToAll(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}

	m.Publish(context.Background(), New(LabPaid, map[string]int{"id": 1}))

	assert.Equal(t, []string{LabPaid}, a.Types())
	assert.Equal(t, []string{LabPaid}, b.Types())
}

func TestKafkaPublisher_EncodesEvent(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, sarama.NewConfig())
	producer.ExpectInputWithCheckerFunctionAndSucceed(func(val []byte) error {
		var evt Event
		if err := json.Unmarshal(val, &evt); err != nil {
			return err
		}
		if evt.Type != VisitStatusChanged {
			return errors.New("unexpected event type " + evt.Type)
		}
		return nil
	})

	k := newKafkaPublisher(producer, "hospital.workflow", zerolog.Nop())
	k.Publish(context.Background(), New(VisitStatusChanged, map[string]string{"to": "ready"}))

	require.NoError(t, k.Close())
}

func TestKafkaPublisher_FailureIsLoggedNotReturned(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, sarama.NewConfig())
	producer.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	k := newKafkaPublisher(producer, "hospital.workflow", zerolog.Nop())
	k.Publish(context.Background(), New(StockAlert, nil))

	assert.NoError(t, k.Close())
}
