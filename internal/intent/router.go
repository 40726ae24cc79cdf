package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/conversation"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/interpreter"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// OutboundMessage is one text to deliver to a phone.
type OutboundMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

const (
	unavailableReply = "I'm having trouble understanding messages right now. Send HELP to see the commands I can always handle."
	defaultName      = "Customer"
)

type Router struct {
	store    directory.Store
	states   conversation.Repository
	locks    conversation.Locker
	machine  *conversation.Machine
	fallback interpreter.Interpreter

	historyLimit int
	log          *zap.Logger
}

func NewRouter(
	store directory.Store,
	states conversation.Repository,
	locks conversation.Locker,
	machine *conversation.Machine,
	fallback interpreter.Interpreter,
	historyLimit int,
	log *zap.Logger,
) *Router {

	if log == nil {
		log = zap.NewNop()
	}

	return &Router{
		store:        store,
		states:       states,
		locks:        locks,
		machine:      machine,
		fallback:     fallback,
		historyLimit: historyLimit,
		log:          log,
	}
}

// ======================================================
// ENTRY POINT
// ======================================================

// HandleInboundMessage processes one message from phone. Messages from the
// same phone never run concurrently. The only errors returned are an
// invalid phone and a failure to take the phone's lock; everything else
// is logged and answered with a reply.
func (r *Router) HandleInboundMessage(
	ctx context.Context,
	phone string,
	displayName string,
	text string,
) ([]OutboundMessage, error) {

	phone = strings.TrimSpace(phone)
	if !validators.IsPhone(phone) {
		return nil, apperr.Validation("invalid_phone")
	}

	var out []OutboundMessage
	err := r.locks.WithLock(ctx, phone, func(ctx context.Context) error {
		bodies := r.handle(ctx, phone, strings.TrimSpace(displayName), text)

		out = make([]OutboundMessage, 0, len(bodies))
		for _, b := range bodies {
			out = append(out, OutboundMessage{To: phone, Body: b})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Router) handle(ctx context.Context, phone, displayName, text string) []string {
	log := r.log.With(zap.String("phone", phone))

	// --------------------------------------------------
	// 1. Customer
	// --------------------------------------------------
	customer, created, err := r.customer(ctx, phone, displayName)
	if err != nil {
		log.Error("resolve customer", zap.Error(err))
		return []string{conversation.Apology}
	}

	// --------------------------------------------------
	// 2. State
	// --------------------------------------------------
	st, err := r.states.Load(ctx, phone)
	if err != nil {
		log.Error("load conversation state", zap.Error(err))
		return []string{conversation.Apology}
	}

	var replies []string
	if created {
		replies = append(replies, r.machine.Welcome(customer)...)
	}

	// --------------------------------------------------
	// 3. Dispatch
	// --------------------------------------------------
	step := st.Step
	body, err := r.dispatch(ctx, conversation.Turn{Customer: customer, Text: text}, &st)
	if err != nil {
		log.Error("conversation handler failed",
			zap.String("step", string(step)),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err),
		)
		st.Reset()
		body = []string{conversation.Apology}
	}
	replies = append(replies, body...)

	// --------------------------------------------------
	// 4. History + save
	// --------------------------------------------------
	st.Remember(interpreter.RoleUser, strings.TrimSpace(text), r.historyLimit)
	for _, b := range replies {
		st.Remember(interpreter.RoleAssistant, b, r.historyLimit)
	}

	if err := r.states.Save(ctx, st); err != nil {
		log.Error("save conversation state", zap.Error(err))
		return []string{conversation.Apology}
	}
	return replies
}

// customer finds the customer by exact phone or creates one. created
// reports a first contact.
func (r *Router) customer(ctx context.Context, phone, displayName string) (models.Customer, bool, error) {
	c, err := r.store.GetCustomerByPhone(ctx, phone)
	if err == nil {
		return c, false, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return models.Customer{}, false, err
	}

	name := displayName
	if name == "" {
		name = defaultName
	}

	c, err = r.store.CreateCustomer(ctx, models.Customer{Name: name, Phone: phone})
	if apperr.HasCode(err, "phone_taken") {
		// Another process created it first.
		c, err = r.store.GetCustomerByPhone(ctx, phone)
		return c, false, err
	}
	if err != nil {
		return models.Customer{}, false, err
	}

	r.log.Info("customer created", zap.String("customer_id", c.ID))
	return c, true, nil
}

// ======================================================
// DISPATCH
// ======================================================

func (r *Router) dispatch(ctx context.Context, turn conversation.Turn, st *conversation.State) ([]string, error) {
	if st.Step != conversation.StepIdle {
		return r.machine.Handle(ctx, turn, st)
	}

	cmd := Classify(turn.Text)
	switch cmd.Name {
	case CmdBook:
		if cmd.HasIndex {
			return r.machine.StartBookingWith(ctx, st, cmd.Index)
		}
		return r.machine.StartBooking(ctx, st)
	case CmdServices:
		return r.machine.Services(ctx)
	case CmdAppointments:
		return r.machine.Appointments(ctx, turn.Customer)
	case CmdCancel:
		return r.machine.StartCancel(ctx, turn.Customer, st)
	case CmdBarbers:
		return r.machine.Barbers(ctx)
	case CmdHours:
		return r.machine.Hours(), nil
	case CmdHelp:
		return r.machine.Help(), nil
	}

	return r.interpret(ctx, turn.Text, st), nil
}

// interpret asks the fallback interpreter. It never changes the step;
// complete entities only earn a suggestion to send BOOK.
func (r *Router) interpret(ctx context.Context, text string, st *conversation.State) []string {
	res, err := r.fallback.Interpret(ctx, text, st.History)
	if err != nil {
		r.log.Warn("fallback interpreter unavailable",
			zap.String("phone", st.Phone),
			zap.Error(err),
		)
		return []string{unavailableReply}
	}

	st.Data.Extracted = st.Data.Extracted.Merge(res.Entities)

	replies := make([]string, 0, 2)
	if res.Text != "" {
		replies = append(replies, res.Text)
	}

	if e := st.Data.Extracted; e.Complete() {
		replies = append(replies, fmt.Sprintf(
			"It sounds like you'd like a %s on %s at %s with %s. Send BOOK to start booking and I'll walk you through it.",
			e.ServiceType, e.Date, e.Time, e.Barber,
		))
	}

	if len(replies) == 0 {
		return []string{unavailableReply}
	}
	return replies
}
