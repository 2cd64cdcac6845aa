// Package bot holds the conversation engine driving the wildcard DNS flows
// and the Telegram adapter on top of it. The engine is transport-agnostic:
// it consumes user ids, free text, and action tags, and produces replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KopralProject/Telegram/internal/cloudflare"
	"github.com/KopralProject/Telegram/internal/dnsname"
)

// Action tags for menu and inline-keyboard buttons.
const (
	ActionListZones     = "list_zones"
	ActionListWildcards = "list_wildcard_records"
	ActionAddWildcard   = "add_wildcard_record"
	ActionDeleteRecord  = "delete_wildcard_record"
	ActionUpdateRecord  = "update_wildcard_record"
	ActionTypeA         = "add_type_A"
	ActionTypeCNAME     = "add_type_CNAME"
	ActionProxyYes      = "add_proxy_yes"
	ActionProxyNo       = "add_proxy_no"
	ActionUpdateContent = "update_content"
	ActionToggleProxy   = "toggle_proxy"

	// Per-record delete buttons carry the record id after this prefix.
	deleteRecordPrefix = "delete_record_id_"
)

// ErrZoneNotFound is returned when a domain name matches no zone in the
// account.
var ErrZoneNotFound = errors.New("zone not found")

// Provider is the subset of the Cloudflare client the engine needs. It is an
// interface so flow logic can be tested without a network.
type Provider interface {
	ListZones(ctx context.Context) ([]cloudflare.Zone, error)
	ListRecords(ctx context.Context, zoneID, recordType, name string) ([]cloudflare.Record, error)
	CreateRecord(ctx context.Context, zoneID string, p cloudflare.RecordParams) (*cloudflare.Record, error)
	UpdateRecord(ctx context.Context, zoneID, recordID string, p cloudflare.RecordParams) (*cloudflare.Record, error)
	DeleteRecord(ctx context.Context, zoneID, recordID string) (*cloudflare.Record, error)
}

// Button is one inline-keyboard button: a label and the action tag it emits.
type Button struct {
	Label  string
	Action string
}

// Reply is what the engine wants said back to the user. Buttons, when set,
// are rows of an inline keyboard.
type Reply struct {
	Text    string
	HTML    bool
	Buttons [][]Button
}

func text(s string) Reply { return Reply{Text: s} }

func html(s string) Reply { return Reply{Text: s, HTML: true} }

func (r Reply) withButtons(rows ...[]Button) Reply {
	r.Buttons = rows
	return r
}

type Engine struct {
	provider Provider
	store    *SessionStore
	logger   zerolog.Logger
}

func NewEngine(provider Provider, store *SessionStore, logger zerolog.Logger) *Engine {
	return &Engine{provider: provider, store: store, logger: logger}
}

// Menu is the top-level action menu.
func (e *Engine) Menu() Reply {
	return text("Choose an option:").withButtons(
		[]Button{{Label: "List domains", Action: ActionListZones}},
		[]Button{{Label: "List wildcard records", Action: ActionListWildcards}},
		[]Button{{Label: "Add wildcard record", Action: ActionAddWildcard}},
		[]Button{{Label: "Delete wildcard record", Action: ActionDeleteRecord}},
		[]Button{{Label: "Update wildcard record", Action: ActionUpdateRecord}},
	)
}

// StartFlow handles a top-level menu selection. Selecting any menu action
// overwrites whatever session the user had.
func (e *Engine) StartFlow(ctx context.Context, userID int64, action string) Reply {
	switch action {
	case ActionListZones:
		e.store.Delete(userID)
		return e.listZones(ctx)
	case ActionListWildcards:
		e.store.Put(userID, &Session{Step: StepZoneForList})
		return text("Enter the domain name (e.g. example.com) to list its wildcard records:")
	case ActionAddWildcard:
		e.store.Put(userID, &Session{Step: StepZoneForAdd})
		return text("Enter the domain name (e.g. example.com) to add a wildcard record to:")
	case ActionDeleteRecord:
		e.store.Put(userID, &Session{Step: StepZoneForDelete})
		return text("Enter the domain name (e.g. example.com) to delete a wildcard record from:")
	case ActionUpdateRecord:
		e.store.Put(userID, &Session{Step: StepZoneForUpdate})
		return text("Enter the domain name (e.g. example.com) to update a wildcard record of:")
	default:
		return text("Unknown action. Use /menu.")
	}
}

// HandleText handles free-text input, dispatched purely by the current step.
func (e *Engine) HandleText(ctx context.Context, userID int64, input string) Reply {
	input = strings.TrimSpace(input)

	session, ok := e.store.Get(userID)
	if !ok {
		return text("Please use /menu to get started.")
	}

	switch session.Step {
	case StepZoneForList:
		return e.listWildcardRecords(ctx, userID, input)
	case StepZoneForAdd:
		session.Domain = input
		session.Step = StepWildcardFragment
		return text("Enter the wildcard subdomain (e.g. *.dev or *.staging):")
	case StepWildcardFragment:
		session.Fragment = input
		session.Step = StepRecordType
		return text("Choose the record type:").withButtons(
			[]Button{{Label: "A", Action: ActionTypeA}},
			[]Button{{Label: "CNAME", Action: ActionTypeCNAME}},
		)
	case StepContentA, StepContentCNAME:
		return e.addRecordContent(ctx, userID, session, input)
	case StepZoneForDelete:
		return e.selectRecord(ctx, userID, input, StepRecordIDForDelete,
			"<b>Choose a wildcard record to delete (enter its ID):</b>")
	case StepRecordIDForDelete:
		return e.deleteRecord(ctx, userID, session, input)
	case StepZoneForUpdate:
		return e.selectRecord(ctx, userID, input, StepRecordIDForUpdate,
			"<b>Choose a wildcard record to update (enter its ID):</b>")
	case StepRecordIDForUpdate:
		session.RecordID = input
		session.Step = StepUpdateAction
		return text("What do you want to update?").withButtons(
			[]Button{{Label: "Update content", Action: ActionUpdateContent}},
			[]Button{{Label: "Toggle proxy", Action: ActionToggleProxy}},
		)
	case StepNewContentA, StepNewContentCNAME:
		return e.updateRecordContent(ctx, userID, session, input)
	default:
		return text("Command not recognized. Use /menu.")
	}
}

// Choose handles mid-flow inline-keyboard selections.
func (e *Engine) Choose(ctx context.Context, userID int64, action string) Reply {
	if id, ok := strings.CutPrefix(action, deleteRecordPrefix); ok {
		session, found := e.store.Get(userID)
		if !found || session.Step != StepRecordIDForDelete {
			return text("Please use /menu to get started.")
		}
		return e.deleteRecord(ctx, userID, session, id)
	}

	session, ok := e.store.Get(userID)
	if !ok {
		return text("Please use /menu to get started.")
	}

	switch action {
	case ActionTypeA, ActionTypeCNAME:
		if session.Step != StepRecordType {
			return text("Command not recognized. Use /menu.")
		}
		if action == ActionTypeA {
			session.RecordType = "A"
			session.Step = StepContentA
			return text("Enter the IP address (e.g. 192.168.1.1):")
		}
		session.RecordType = "CNAME"
		session.Step = StepContentCNAME
		return text("Enter the target host (e.g. example.com or your-app.herokuapp.com):")
	case ActionProxyYes, ActionProxyNo:
		if session.Step != StepProxyChoice {
			return text("Command not recognized. Use /menu.")
		}
		return e.createRecord(ctx, userID, session, action == ActionProxyYes)
	case ActionUpdateContent:
		if session.Step != StepUpdateAction {
			return text("Command not recognized. Use /menu.")
		}
		return e.startContentUpdate(userID, session)
	case ActionToggleProxy:
		if session.Step != StepUpdateAction {
			return text("Command not recognized. Use /menu.")
		}
		return e.toggleProxy(ctx, userID, session)
	default:
		return text("Unknown action. Use /menu.")
	}
}

// resolveZoneID maps a domain name to its zone id. The zone list is fetched
// fresh, never cached across sessions.
func (e *Engine) resolveZoneID(ctx context.Context, domain string) (string, error) {
	zones, err := e.provider.ListZones(ctx)
	if err != nil {
		return "", err
	}
	for _, z := range zones {
		if z.Name == domain {
			return z.ID, nil
		}
	}
	return "", ErrZoneNotFound
}

// fetchWildcardRecords lists records matching *.<parent> for all types, then
// keeps only names literally starting with "*." since the provider pattern
// match can return non-wildcard names too.
func (e *Engine) fetchWildcardRecords(ctx context.Context, zoneID, domain string) ([]cloudflare.Record, error) {
	pattern := "*." + dnsname.ParentDomain(domain)
	records, err := e.provider.ListRecords(ctx, zoneID, "", pattern)
	if err != nil {
		return nil, err
	}
	wildcards := make([]cloudflare.Record, 0, len(records))
	for _, r := range records {
		if strings.HasPrefix(r.Name, "*.") {
			wildcards = append(wildcards, r)
		}
	}
	return wildcards, nil
}

func (e *Engine) listZones(ctx context.Context) Reply {
	zones, err := e.provider.ListZones(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("list zones failed")
		return text("Something went wrong while fetching your domains.")
	}
	if len(zones) == 0 {
		return text("No domains found in your Cloudflare account.")
	}
	return html(renderZones(zones))
}

func (e *Engine) listWildcardRecords(ctx context.Context, userID int64, domain string) Reply {
	defer e.store.Delete(userID)

	zoneID, err := e.resolveZoneID(ctx, domain)
	if err != nil {
		return e.zoneFailure(domain, err)
	}

	records, err := e.fetchWildcardRecords(ctx, zoneID, domain)
	if err != nil {
		e.logger.Error().Err(err).Str("zone", domain).Msg("list wildcard records failed")
		return text("Something went wrong while fetching records.")
	}
	if len(records) == 0 {
		return text(fmt.Sprintf("No wildcard records found for %s.", domain))
	}
	return html(renderRecords(fmt.Sprintf("<b>Wildcard records for %s:</b>", domain), records))
}

// addRecordContent validates the content entered for the pending add and, if
// no record of the same name and type exists yet, asks about proxying.
// Validation failure keeps the session so the same step can be retried.
func (e *Engine) addRecordContent(ctx context.Context, userID int64, session *Session, content string) Reply {
	if session.Step == StepContentA {
		if !dnsname.IsValidIPv4(content) {
			return text("Invalid IP address. Please enter a valid IPv4 address.")
		}
	} else {
		if !dnsname.IsValidDomain(content) && !strings.Contains(content, ".") {
			return text("Invalid target host. Please enter a valid domain or subdomain.")
		}
	}

	zoneID, err := e.resolveZoneID(ctx, session.Domain)
	if err != nil {
		e.store.Delete(userID)
		return e.zoneFailure(session.Domain, err)
	}

	fullName := session.Fragment + "." + dnsname.ParentDomain(session.Domain)

	// Uniqueness of (name, type) is enforced here, not by the API.
	existing, err := e.provider.ListRecords(ctx, zoneID, session.RecordType, fullName)
	if err != nil {
		e.store.Delete(userID)
		e.logger.Error().Err(err).Str("name", fullName).Msg("duplicate check failed")
		return text("Something went wrong while checking existing records.")
	}
	if len(existing) > 0 {
		e.store.Delete(userID)
		return text(fmt.Sprintf("A wildcard record %s of type %s already exists.", fullName, session.RecordType))
	}

	session.ZoneID = zoneID
	session.Content = content
	session.Step = StepProxyChoice
	return text("Enable proxying (Cloudflare CDN)?").withButtons(
		[]Button{{Label: "Yes", Action: ActionProxyYes}},
		[]Button{{Label: "No", Action: ActionProxyNo}},
	)
}

func (e *Engine) createRecord(ctx context.Context, userID int64, session *Session, proxied bool) Reply {
	defer e.store.Delete(userID)

	fullName := session.Fragment + "." + dnsname.ParentDomain(session.Domain)
	_, err := e.provider.CreateRecord(ctx, session.ZoneID, cloudflare.RecordParams{
		Type:    session.RecordType,
		Name:    fullName,
		Content: session.Content,
		Proxied: proxied,
		TTL:     1,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("name", fullName).Msg("create record failed")
		return text("Something went wrong while creating the record.")
	}
	return html(renderCreated(fullName, session.RecordType, session.Content, proxied))
}

// selectRecord fetches the wildcard records of a domain and snapshots them
// into the session for id selection; used by both the delete and update flows.
func (e *Engine) selectRecord(ctx context.Context, userID int64, domain string, next Step, header string) Reply {
	zoneID, err := e.resolveZoneID(ctx, domain)
	if err != nil {
		e.store.Delete(userID)
		return e.zoneFailure(domain, err)
	}

	records, err := e.fetchWildcardRecords(ctx, zoneID, domain)
	if err != nil {
		e.store.Delete(userID)
		e.logger.Error().Err(err).Str("zone", domain).Msg("list wildcard records failed")
		return text("Something went wrong while fetching records.")
	}
	if len(records) == 0 {
		e.store.Delete(userID)
		return text(fmt.Sprintf("No wildcard records found for %s.", domain))
	}

	e.store.Put(userID, &Session{
		Step:    next,
		Domain:  domain,
		ZoneID:  zoneID,
		Records: records,
	})

	reply := html(renderRecords(header, records))
	if next == StepRecordIDForDelete {
		var rows [][]Button
		for _, r := range records {
			rows = append(rows, []Button{{
				Label:  "Delete " + r.Name,
				Action: deleteRecordPrefix + r.ID,
			}})
		}
		reply = reply.withButtons(rows...)
	}
	return reply
}

// deleteRecord resolves the id against the session snapshot. An id absent
// from the snapshot re-prompts; a snapshotted id is deleted remotely without
// re-verifying existence, so an out-of-band deletion surfaces as a provider
// failure.
func (e *Engine) deleteRecord(ctx context.Context, userID int64, session *Session, recordID string) Reply {
	record := session.findRecord(recordID)
	if record == nil {
		return text("Invalid record ID. Please enter an ID from the list.")
	}

	defer e.store.Delete(userID)

	if _, err := e.provider.DeleteRecord(ctx, session.ZoneID, recordID); err != nil {
		e.logger.Error().Err(err).Str("record_id", recordID).Msg("delete record failed")
		return text("Something went wrong while deleting the record.")
	}
	return html(fmt.Sprintf("Wildcard record <code>%s</code> (ID: <code>%s</code>) deleted.", record.Name, recordID))
}

func (e *Engine) startContentUpdate(userID int64, session *Session) Reply {
	record := session.findRecord(session.RecordID)
	if record == nil {
		e.store.Delete(userID)
		return text("Record not found.")
	}

	switch record.Type {
	case "A":
		session.Step = StepNewContentA
		return text(fmt.Sprintf("Enter the new IP for record %s (currently: %s):", record.Name, record.Content))
	case "CNAME":
		session.Step = StepNewContentCNAME
		return text(fmt.Sprintf("Enter the new target host for record %s (currently: %s):", record.Name, record.Content))
	default:
		e.store.Delete(userID)
		return text("This record type does not support content updates.")
	}
}

// toggleProxy flips the proxied flag and issues a full update with every
// other field unchanged, since the API has no partial patch.
func (e *Engine) toggleProxy(ctx context.Context, userID int64, session *Session) Reply {
	record := session.findRecord(session.RecordID)
	if record == nil {
		e.store.Delete(userID)
		return text("Record not found.")
	}

	defer e.store.Delete(userID)

	proxied := !record.Proxied
	_, err := e.provider.UpdateRecord(ctx, session.ZoneID, record.ID, cloudflare.RecordParams{
		Type:    record.Type,
		Name:    record.Name,
		Content: record.Content,
		Proxied: proxied,
		TTL:     record.TTL,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("record_id", record.ID).Msg("toggle proxy failed")
		return text("Something went wrong while changing the proxy status.")
	}

	status := "❌ off"
	if proxied {
		status = "✅ on"
	}
	return html(fmt.Sprintf("Proxy status for record <code>%s</code> is now: <code>%s</code>", record.Name, status))
}

func (e *Engine) updateRecordContent(ctx context.Context, userID int64, session *Session, content string) Reply {
	if session.Step == StepNewContentA {
		if !dnsname.IsValidIPv4(content) {
			return text("Invalid IP address. Please enter a valid IPv4 address.")
		}
	} else {
		if !dnsname.IsValidDomain(content) && !strings.Contains(content, ".") {
			return text("Invalid target host. Please enter a valid domain or subdomain.")
		}
	}

	record := session.findRecord(session.RecordID)
	if record == nil {
		e.store.Delete(userID)
		return text("Record not found.")
	}

	defer e.store.Delete(userID)

	_, err := e.provider.UpdateRecord(ctx, session.ZoneID, record.ID, cloudflare.RecordParams{
		Type:    record.Type,
		Name:    record.Name,
		Content: content,
		Proxied: record.Proxied,
		TTL:     record.TTL,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("record_id", record.ID).Msg("update record failed")
		return text("Something went wrong while updating the record.")
	}
	return html(fmt.Sprintf("Wildcard record <code>%s</code> updated to: <code>%s</code>.", record.Name, content))
}

func (e *Engine) zoneFailure(domain string, err error) Reply {
	if errors.Is(err, ErrZoneNotFound) {
		return text(fmt.Sprintf("Domain %s was not found in your Cloudflare account. Check the name and make sure it is added to Cloudflare.", domain))
	}
	e.logger.Error().Err(err).Str("zone", domain).Msg("zone lookup failed")
	return text("Something went wrong while resolving the domain.")
}
