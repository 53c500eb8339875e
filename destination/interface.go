/*
 * Copyright 2025 Linka AQ
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package destination

import (
	"context"

	"github.com/linka-aq/linka-proxy/types"
)

type Config interface {
	Validate() error
}

type Writer interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// Check verifies reachability and credentials; only the check command
	// calls it, a sync run's single outbound request is the delivery itself
	Check(ctx context.Context) error
	// Setup binds the adapter to the stream it will receive
	Setup(stream *types.Stream, opts *Options) error
	// Write delivers the batch in one shot
	Write(ctx context.Context, records []types.Measurement) error
	Close(ctx context.Context) error
}
