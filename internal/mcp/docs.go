package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `turnkeeper rotates a shared activity among a roster of people, one timed turn at a time.

Core concepts:
- Roster: the people who take turns. Each has a default turn length and accumulated usage.
- Queue: the order for the current rotation, built by start_queue (shuffled, priority people first when priority mode is on).
- Timer: counts the current turn. It warns shortly before the end and signals expiry, then keeps running as overtime.
- Rules: expressions applied when a turn finishes. They change the person's next turn length and may adjust everyone else.
- Devices: several devices can run rotations. Each publishes its rotation so others can see it.

Typical loop:
1) add_person for each participant (once).
2) start_queue, then start_timer.
3) poll_events regularly to receive warnings, expiry and turn changes.
4) finish_turn when the person is done. The next person is loaded but not started.
5) stop_rotation when finished, or keep going until the rotation completes.

Docs:
- turnkeeper://docs/index
- turnkeeper://docs/concepts
- turnkeeper://docs/rules
- turnkeeper://docs/workflows/rotation
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "turnkeeper://docs/index",
		Name:        "docs_index",
		Title:       "turnkeeper docs index",
		Description: "Entry point: what each doc covers and when to read it.",
		Content: `# turnkeeper: Docs Index

## Quick start

1. ` + "`add_person`" + ` for each participant.
2. ` + "`start_queue`" + ` to build the rotation.
3. ` + "`start_timer`" + `, then ` + "`poll_events`" + ` while the turn runs.
4. ` + "`finish_turn`" + ` to apply rules and advance.

## Docs

- ` + "`turnkeeper://docs/concepts`" + ` covers the queue, timer states and multi-device sessions.
- ` + "`turnkeeper://docs/rules`" + ` covers the rule expression language and the built-in rules.
- ` + "`turnkeeper://docs/workflows/rotation`" + ` walks through a full rotation.

## Limitations

- Events are buffered in memory. Events not polled before the buffer fills are dropped oldest first.
- Active-device records older than one hour are ignored and purged.
`,
	},
	{
		URI:         "turnkeeper://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts",
		Description: "Queue, timer states, overtime and multi-device sessions.",
		Content: `# Concepts

## Queue

A queue is an ordered list of entries. Each entry is a person plus the seconds allotted for this turn.
` + "`start_queue`" + ` shuffles the roster. With priority mode on, priority people are shuffled among
themselves and placed first. ` + "`reshuffle_queue`" + ` reshuffles either the whole queue or only the
entries after the current one, depending on configuration.

## Timer

States are ` + "`idle`" + `, ` + "`running`" + ` and ` + "`paused`" + `. The counter counts up or down according to the
count_down setting. A warning fires once when warning_minutes remain, and expiry fires once when the
allotted time is used. The timer keeps running after expiry; the excess is overtime.

Pause and reset can be disabled in settings. Then ` + "`pause_timer`" + ` and ` + "`reset_timer`" + ` fail with
PAUSE_DISABLED or RESET_DISABLED.

## Finishing a turn

` + "`finish_turn`" + ` computes overtime (negative when the person finished early), adds the used time to the
person's usage, runs the enabled rules and advances. After the last entry the rotation completes and the
device state is cleared.

## Devices

Each process has a device id. The current rotation is published to a shared table so other devices can
show it via ` + "`active_devices`" + `. Entries are advisory; the last writer wins.
`,
	},
	{
		URI:         "turnkeeper://docs/rules",
		Name:        "docs_rules",
		Title:       "Rule expressions",
		Description: "Variables, operators and functions allowed in rule conditions and actions.",
		Content: `# Rule expressions

A rule has a condition and an action. When a turn finishes, enabled rules run in order. If the condition
holds, the action is evaluated.

## Variables

- ` + "`overtime`" + `: seconds past the allotted time (negative when early). Allowed in conditions and actions.
- ` + "`nextTurn`" + `: the person's next turn length so far. Actions only.
- ` + "`allOthers`" + `: actions of the form ` + "`allOthers + N`" + ` or ` + "`allOthers - N`" + ` adjust every other
  waiting person by N seconds instead of changing the next turn.

## Operators and functions

Arithmetic ` + "`+ - * / %`" + `, comparison ` + "`< <= > >= == != === !==`" + `, logic ` + "`&& || !`" + `,
parentheses, and ` + "`abs min max floor ceil round`" + ` (also spelled ` + "`Math.abs`" + ` and so on).
Nothing else is accepted.

## Results

The next turn is floored to whole minutes and never drops below one minute. When several rules match, each
sees the result of the previous one. A rule that fails to evaluate is skipped and reported in the turn
result.

Built-in rules cannot be deleted, only disabled with ` + "`toggle_rule`" + `.
`,
	},
	{
		URI:         "turnkeeper://docs/workflows/rotation",
		Name:        "docs_workflow_rotation",
		Title:       "Workflow: a full rotation",
		Description: "Step-by-step tool usage for running a rotation.",
		Content: `# Workflow: a full rotation

1. ` + "`get_settings`" + ` and adjust with ` + "`update_settings`" + ` if needed.
2. ` + "`list_people`" + `; add missing people with ` + "`add_person`" + `.
3. ` + "`start_queue`" + `. It fails with EMPTY_ROSTER when nobody is on the roster.
4. ` + "`start_timer`" + `.
5. Call ` + "`poll_events`" + ` every few seconds. Expect ` + "`warning`" + ` then ` + "`expired`" + `.
6. ` + "`finish_turn`" + `. Read ` + "`nextTurnSeconds`" + `, ` + "`appliedRules`" + ` and ` + "`ruleErrors`" + ` in the result.
7. Repeat from step 4 for the next person until ` + "`rotationComplete`" + ` is true.

To abandon a rotation call ` + "`stop_rotation`" + `. To back up the roster use ` + "`export_data`" + ` and
restore it with ` + "`import_data`" + `.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
