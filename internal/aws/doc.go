// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package aws loads AWS configuration and ships credential archives to S3
// when an s3:// destination is given.
package aws
