package keyboard

// InlineButton is a button definition before its callback data is encoded.
type InlineButton struct {
	Text   string
	Unique string // Callback action.
	Data   string // Action argument, appended after the separator.
}

// Button is a rendered inline button carrying raw callback data.
type Button struct {
	Text string
	Data string
}

// Inline is a transport-neutral inline keyboard.
type Inline struct {
	Rows [][]Button
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

// NewInlineKeyboard creates an empty builder.
func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{rows: make([][]InlineButton, 0)}
}

// AddRow appends a new row; empty rows are ignored.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build encodes every button's callback data.
func (b *InlineKeyboardBuilder) Build() (*Inline, error) {
	keyboard := &Inline{Rows: make([][]Button, len(b.rows))}
	for i, row := range b.rows {
		keyboard.Rows[i] = make([]Button, len(row))
		for j, btn := range row {
			data, err := EncodeCallback(btn.Unique, btn.Data)
			if err != nil {
				return nil, err
			}
			keyboard.Rows[i][j] = Button{Text: btn.Text, Data: data}
		}
	}

	return keyboard, nil
}
