// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunker

import (
	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer measures text with the BPE vocabularies used by
// OpenAI-family embedding models.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTiktokenTokenizer loads the named encoding, e.g. "cl100k_base".
func NewTiktokenTokenizer(encodingName string) (*TiktokenTokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &TiktokenTokenizer{encoding: encoding}, nil
}

// NewDefaultTokenizer returns the cl100k_base tokenizer used by the
// pipeline's embedding models.
func NewDefaultTokenizer() (*TiktokenTokenizer, error) {
	return NewTiktokenTokenizer("cl100k_base")
}

// Count returns the number of tokens in text.
func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Tail returns the suffix of text covering at most n tokens.
func (t *TiktokenTokenizer) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	ids := t.encoding.Encode(text, nil, nil)
	if len(ids) <= n {
		return text
	}
	return t.encoding.Decode(ids[len(ids)-n:])
}
