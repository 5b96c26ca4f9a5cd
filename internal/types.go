package internal

type LineSource string

const (
	SourceText       LineSource = "text"
	SourceEmailText  LineSource = "email_text"
	SourceHTMLList   LineSource = "html_list"
	SourceHTMLTable  LineSource = "html_table"
	SourceXLSX       LineSource = "xlsx"
	SourcePDF        LineSource = "pdf"
	SourceAPIRequest LineSource = "api"
)

// SourceLine is one candidate ingredient line pulled out of a recipe source.
type SourceLine struct {
	LineNo int
	Source LineSource
	Raw    string
	Meta   map[string]any
}

type MatchStatus string

type MatchReason string

const (
	MatchOK       MatchStatus = "OK"
	MatchReview   MatchStatus = "REVIEW"
	MatchNotFound MatchStatus = "NOT_FOUND"

	ReasonName  MatchReason = "NAME"
	ReasonAlias MatchReason = "ALIAS"
	ReasonFuzzy MatchReason = "FUZZY"
	ReasonNone  MatchReason = "NONE"
)

type ProductRecord struct {
	ID        int
	SyncUID   *string
	Name      string
	Aisle     *string
	Category  *string
	Aliases   []string
	UpdatedAt *string
	RawJSON   string
}

type MatchCandidate struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type MatchProduct struct {
	ID       int     `json:"id"`
	SyncUID  *string `json:"syncUid"`
	Name     string  `json:"name"`
	Aisle    *string `json:"aisle"`
	Category *string `json:"category"`
}

type MatchResult struct {
	Status     MatchStatus      `json:"status"`
	Confidence float64          `json:"confidence"`
	Reason     MatchReason      `json:"reason"`
	Product    *MatchProduct    `json:"product"`
	Candidates []MatchCandidate `json:"candidates"`
}

type ShoppingList struct {
	ID        int64  `json:"id"`
	PublicID  string `json:"publicId"`
	Name      string `json:"name"`
	EmailID   *int   `json:"emailId,omitempty"`
	ItemCount int    `json:"itemCount"`
	CreatedAt string `json:"createdAt"`
}

// ListItem is a parsed ingredient with its catalog placement.
type ListItem struct {
	ID              int64       `json:"id"`
	ListID          int64       `json:"listId"`
	LineNo          int         `json:"lineNo"`
	Source          LineSource  `json:"source"`
	RawLine         string      `json:"rawLine"`
	Quantity        string      `json:"quantity"`
	Item            string      `json:"item"`
	MatchStatus     MatchStatus `json:"matchStatus"`
	Confidence      float64     `json:"confidence"`
	MatchReason     MatchReason `json:"matchReason"`
	ProductID       *int        `json:"productId"`
	ProductName     *string     `json:"productName"`
	Aisle           *string     `json:"aisle"`
	Category        *string     `json:"category"`
	Candidate2Name  *string     `json:"candidate2Name,omitempty"`
	Candidate2Score *float64    `json:"candidate2Score,omitempty"`

	Candidates []MatchCandidate `json:"-"`
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

const (
	EmailFetched   = "fetched"
	EmailProcessed = "processed"
	EmailSkipped   = "skipped"
	EmailExported  = "exported"
)

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
