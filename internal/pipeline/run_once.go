package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"outreach-engine/internal/analytics"
	"outreach-engine/internal/campaign"
	"outreach-engine/internal/config"
	"outreach-engine/internal/crm"
	"outreach-engine/internal/dedupe"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/mailer"
	"outreach-engine/internal/report"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/source"
	"outreach-engine/internal/source/util"
	"outreach-engine/internal/store"
	"outreach-engine/internal/unsubpoll"

	"golang.org/x/sync/errgroup"
)

const sourceTimeout = 2 * time.Minute

// runOnce is one full pipeline pass: opt-out poll, discovery, dedupe,
// campaign sends, CRM sync, analytics snapshot, status report. Each phase
// degrades independently; only a storage failure aborts the run.
func runOnce(ctx context.Context, db *sql.DB, cfg config.Config, hub *events.Hub) (report.RunSummary, error) {
	sum := report.RunSummary{
		StartedAt:  time.Now().UTC(),
		ByCampaign: map[string]int{},
	}

	// Opt-out replies first, so today's unsubscribes bind today's sends.
	pollUnsubscribes(ctx, db, cfg, hub)

	discoverAndIngest(ctx, db, cfg, hub, &sum)
	runCampaigns(ctx, db, cfg, hub, smtpSender(cfg), &sum)

	if cfg.CRM.Enabled {
		client := crm.NewClient(cfg.CRM.BaseURL, secrets.GetOptional(secrets.HubSpotToken))
		sum.CRMSynced, sum.CRMFailed = crm.SyncPending(ctx, db, client)
	}

	snap := analytics.Aggregate(ctx, buildAdapters(cfg), analytics.LastWeek(),
		time.Duration(cfg.Analytics.TimeoutSeconds)*time.Second)
	if err := analytics.SaveSnapshot(cfg.App.DataDir, snap); err != nil {
		log.Printf("[pipeline] save snapshot: %v", err)
	} else {
		hub.Publish(events.Make(events.TypeSnapshotReady, map[string]string{"runId": snap.RunID}))
	}
	sum.Snapshot = &snap

	sum.TotalLeads, _ = store.CountLeads(ctx, db)
	optOuts, _ := store.ListOptOuts(ctx, db)
	sum.TotalOptOut = len(optOuts)
	sum.FinishedAt = time.Now().UTC()

	if cfg.Report.Enabled && cfg.Outreach.ReportEmail != "" {
		send := smtpSender(cfg)
		if err := report.Send(send, cfg.Outreach.FromEmail, cfg.Outreach.ReportEmail, sum); err != nil {
			log.Printf("[pipeline] status report: %v", err)
		}
	}

	return sum, nil
}

func pollUnsubscribes(ctx context.Context, db *sql.DB, cfg config.Config, hub *events.Hub) {
	if !cfg.Unsubscribe.Enabled {
		return
	}
	p := &unsubpoll.Poller{
		Host:     cfg.Unsubscribe.IMAPHost,
		Username: cfg.Unsubscribe.Username,
		Password: secrets.GetOptional(secrets.IMAPPassword),
		Mailbox:  cfg.Unsubscribe.Mailbox,
	}
	added, err := p.RunOnce(ctx, db, 48*time.Hour)
	if err != nil {
		log.Printf("[pipeline] unsubscribe poll: %v", err)
		return
	}
	if added > 0 {
		log.Printf("[pipeline] %d new opt-outs from mailbox", added)
		hub.Publish(events.Make(events.TypeOptOutAdded, map[string]int{"added": added}))
	}
}

// discoverAndIngest fans out to every enabled connector with a per-source
// timeout, then merges all candidates through the dedupe layer. A failed
// source keeps its cursor so the next run retries the same window.
func discoverAndIngest(ctx context.Context, db *sql.DB, cfg config.Config, hub *events.Hub, sum *report.RunSummary) {
	limiter := util.NewHostLimiter(1.0, 2)
	connectors := source.Enabled(cfg, limiter)
	if len(connectors) == 0 {
		return
	}

	results := make(chan source.DiscoverResult, len(connectors))
	var g errgroup.Group
	for _, c := range connectors {
		c := c
		g.Go(func() error {
			since, err := store.SourceCursor(ctx, db, c.Name())
			if err != nil {
				results <- source.DiscoverResult{Source: c.Name(), Err: err}
				return nil
			}

			sctx, cancel := context.WithTimeout(ctx, sourceTimeout)
			defer cancel()

			started := time.Now()
			cands, err := c.Discover(sctx, since)
			results <- source.DiscoverResult{Source: c.Name(), Candidates: cands, Err: err}
			if err == nil {
				if cerr := store.SetSourceCursor(ctx, db, c.Name(), started); cerr != nil {
					log.Printf("[discover] %s: persist cursor: %v", c.Name(), cerr)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	ing := &dedupe.Ingestor{DB: db}
	for res := range results {
		if res.Err != nil {
			log.Printf("[discover] %s: %v", res.Source, res.Err)
			sum.SourceErrs = append(sum.SourceErrs, fmt.Sprintf("%s: %v", res.Source, res.Err))
			hub.Publish(events.Make(events.TypeSourceDone, map[string]string{
				"source": res.Source,
				"error":  res.Err.Error(),
			}))
			continue
		}
		log.Printf("[discover] %s: %d candidates", res.Source, len(res.Candidates))
		hub.Publish(events.Make(events.TypeSourceDone, map[string]any{
			"source":     res.Source,
			"candidates": len(res.Candidates),
		}))
		sum.Discovered += len(res.Candidates)
		for _, cand := range res.Candidates {
			r, err := ing.Ingest(ctx, cand)
			if err != nil {
				log.Printf("[discover] ingest %s: %v", cand.Email, err)
				continue
			}
			switch r {
			case dedupe.Created:
				sum.NewLeads++
			case dedupe.Updated:
				sum.Updated++
			}
		}
	}
}

// runCampaigns walks every campaign type, sending to the eligible set under
// the cap and the SMTP pacer. The cap counter moves only on a successful
// send.
func runCampaigns(ctx context.Context, db *sql.DB, cfg config.Config, hub *events.Hub, send mailer.SendFunc, sum *report.RunSummary) {
	o := cfg.Outreach
	sched := &campaign.Scheduler{
		DB: db,
		Classifier: &campaign.FileClassifier{
			Path:           filepath.Join(cfg.App.DataDir, "activity.json"),
			ActiveWindow:   7 * 24 * time.Hour,
			InactiveWindow: time.Duration(o.InactiveWindowDays) * 24 * time.Hour,
		},
		Caps: campaign.Caps{
			ColdPerDay:       o.ColdPerDay,
			AnnouncePerDay:   o.AnnouncePerDay,
			ReengagePerWeek:  o.ReengagePerWeek,
			ReengageCooldown: time.Duration(o.ReengageCooldownDays) * 24 * time.Hour,
			AnnounceCooldown: time.Duration(o.AnnounceCooldownDays) * 24 * time.Hour,
		},
	}
	disp := &mailer.Dispatcher{
		DB:          db,
		Send:        send,
		From:        o.FromEmail,
		BCC:         o.BCCEmail,
		BaseURL:     cfg.App.BaseURL,
		UnsubSecret: secrets.GetOptional(secrets.UnsubscribeSecret),
	}
	pacer := util.NewSendPacer(o.SendsPerMinute)

	for _, camp := range domain.Campaigns() {
		leads, err := sched.Eligible(ctx, camp)
		if err != nil {
			log.Printf("[pipeline] %s eligibility: %v", camp, err)
			continue
		}
		for _, lead := range leads {
			if err := pacer.Wait(ctx); err != nil {
				return // run cancelled
			}
			rec, err := disp.Dispatch(ctx, lead, camp)
			switch rec.Outcome {
			case domain.OutcomeSent:
				sum.Sent++
				sum.ByCampaign[string(camp)]++
				window := sched.WindowStart(camp, rec.CreatedAt)
				if err := store.IncrementSent(ctx, db, camp, window); err != nil {
					log.Printf("[pipeline] bump counter %s: %v", camp, err)
				}
				hub.Publish(events.Make(events.TypeOutreachSent, map[string]string{
					"email":    lead.Email,
					"campaign": string(camp),
				}))
			case domain.OutcomeFailed:
				sum.SendFailed++
				if err != nil {
					log.Printf("[pipeline] send %s to %s: %v", camp, lead.Email, err)
				}
			default:
				sum.Skipped++
			}
		}
	}
}

func smtpSender(cfg config.Config) mailer.SendFunc {
	o := cfg.Outreach
	return mailer.NewSMTPSender(o.SMTPHost, o.SMTPPort, o.SMTPUser, secrets.GetOptional(secrets.SMTPPassword))
}
