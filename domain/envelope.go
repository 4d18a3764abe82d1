package domain

type Location string

const (
	LocationChat      Location = "chat"
	LocationSummary   Location = "summary"
	LocationRecommend Location = "recommend"
	LocationPresence  Location = "presence"
)

type PresenceStatus string

const (
	Joined PresenceStatus = "joined"
	Left   PresenceStatus = "left"
)

// Source is a related document suggested after a summary.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// WireEnvelope is the JSON shape every broadcast takes on the wire.
type WireEnvelope struct {
	Location Location `json:"location"`
	Sender   string   `json:"sender"`
	Message  string   `json:"message"`
	Sources  []Source `json:"sources,omitempty"`
}

// Envelope is a closed set of broadcast variants.
// Only the types declared in this file implement it.
type Envelope interface {
	Location() Location
	Wire() WireEnvelope
	isEnvelope()
}

type ChatEnvelope struct {
	Sender  string
	Message string
}

type SummaryEnvelope struct {
	Sender  string
	Message string
}

type RecommendEnvelope struct {
	Sender  string
	Message string
	Sources []Source
}

type PresenceEnvelope struct {
	Participant string
	Status      PresenceStatus
}

func NewChatEnvelope(m Message) ChatEnvelope {
	return ChatEnvelope{Sender: m.Sender, Message: m.Body}
}

func NewSummaryEnvelope(sender, message string) SummaryEnvelope {
	return SummaryEnvelope{Sender: sender, Message: message}
}

// NewRecommendEnvelope copies sources so later mutation by the caller
// never leaks into an envelope already handed to the transport.
func NewRecommendEnvelope(sender, message string, sources []Source) RecommendEnvelope {
	copied := make([]Source, len(sources))
	copy(copied, sources)
	return RecommendEnvelope{Sender: sender, Message: message, Sources: copied}
}

func NewPresenceEnvelope(participant string, status PresenceStatus) PresenceEnvelope {
	return PresenceEnvelope{Participant: participant, Status: status}
}

func (ChatEnvelope) Location() Location      { return LocationChat }
func (SummaryEnvelope) Location() Location   { return LocationSummary }
func (RecommendEnvelope) Location() Location { return LocationRecommend }
func (PresenceEnvelope) Location() Location  { return LocationPresence }

func (ChatEnvelope) isEnvelope()      {}
func (SummaryEnvelope) isEnvelope()   {}
func (RecommendEnvelope) isEnvelope() {}
func (PresenceEnvelope) isEnvelope()  {}

func (e ChatEnvelope) Wire() WireEnvelope {
	return WireEnvelope{Location: LocationChat, Sender: e.Sender, Message: e.Message}
}

func (e SummaryEnvelope) Wire() WireEnvelope {
	return WireEnvelope{Location: LocationSummary, Sender: e.Sender, Message: e.Message}
}

func (e RecommendEnvelope) Wire() WireEnvelope {
	return WireEnvelope{Location: LocationRecommend, Sender: e.Sender, Message: e.Message, Sources: e.Sources}
}

func (e PresenceEnvelope) Wire() WireEnvelope {
	return WireEnvelope{Location: LocationPresence, Sender: e.Participant, Message: string(e.Status)}
}
