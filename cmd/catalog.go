package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/reconciler"
	"github.com/desertthunder/likesync/internal/shared"
)

// sortedTracks returns the collection's records ordered by id.
func sortedTracks(c models.Collection) []models.TrackRecord {
	tracks := make([]models.TrackRecord, 0, len(c))
	for _, id := range c.IDs() {
		tracks = append(tracks, c[id])
	}
	return tracks
}

// CatalogPlaylists lists the current user's playlists.
func (r *Runner) CatalogPlaylists(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	playlists, err := catalog.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	r.logger.Debug("listed playlists", "count", len(playlists))

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	return formatter.WritePlaylistListing(r.output, playlists)
}

// CatalogTracks lists the tracks of the playlist given by --id.
func (r *Runner) CatalogTracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}

	catalog, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	tracks, err := catalog.PlaylistTracks(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeTracks(cmd, tracks)
}

// CatalogLiked lists the user's liked tracks.
func (r *Runner) CatalogLiked(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	tracks, err := catalog.LikedTracks(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeTracks(cmd, tracks)
}

func (r *Runner) writeTracks(cmd *cli.Command, tracks models.Collection) error {
	sorted := sortedTracks(tracks)
	if cmd.Bool("json") {
		return r.writeJSON(sorted, cmd.Bool("pretty"))
	}
	return formatter.WriteTrackListing(r.output, sorted)
}

// CatalogSearch prints the candidates returned for --artist and --title.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	artist, title := cmd.String("artist"), cmd.String("title")
	if artist == "" && title == "" {
		return fmt.Errorf("%w: --artist or --title", shared.ErrMissingArgument)
	}

	catalog, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	results, err := catalog.Search(ctx, artist, title)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}
	if len(results) == 0 {
		return r.writePlain("No results for %s - %s\n", artist, title)
	}
	return formatter.WriteTrackListing(r.output, results)
}

// CatalogAdd appends the --track ids to the --id playlist in chunks of at most 100.
func (r *Runner) CatalogAdd(ctx context.Context, cmd *cli.Command) error {
	return r.writePlaylist(ctx, cmd, "add")
}

// CatalogRemove removes every occurrence of the --track ids from the --id playlist.
func (r *Runner) CatalogRemove(ctx context.Context, cmd *cli.Command) error {
	return r.writePlaylist(ctx, cmd, "remove")
}

func (r *Runner) writePlaylist(ctx context.Context, cmd *cli.Command, op string) error {
	playlistID := cmd.String("id")
	ids := cmd.StringSlice("track")
	if playlistID == "" || len(ids) == 0 {
		return fmt.Errorf("%w: --id and at least one --track", shared.ErrMissingArgument)
	}

	catalog, err := r.catalogService(ctx)
	if err != nil {
		return err
	}

	write, verb := catalog.AddTracks, "Added"
	if op == "remove" {
		write, verb = catalog.RemoveTracks, "Removed"
	}

	written := 0
	for i, chunk := range reconciler.Chunk(ids, reconciler.DefaultChunkSize) {
		if err := write(ctx, playlistID, chunk); err != nil {
			return fmt.Errorf("failed to %s chunk %d: %w", op, i+1, err)
		}
		written += len(chunk)
	}

	r.logger.Info("playlist updated", "op", op, "playlist", playlistID, "tracks", written)
	return r.writePlain("✓ %s %d tracks (playlist %s)\n", verb, written, playlistID)
}
