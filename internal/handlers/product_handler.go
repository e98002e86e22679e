package handlers

import (
	"errors"
	"strconv"

	"estoque/internal/models"
	"estoque/internal/services"
	"estoque/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Response messages returned to API clients.
const (
	msgCreated         = "Produto inserido com sucesso"
	msgDeleted         = "Produto excluido com sucesso"
	msgUpdated         = "Produto atualizado"
	msgValidation      = "Erro de validação"
	msgInvalidBody     = "Corpo da requisição inválido"
	msgNegativeID      = "O id não pode ser negativo"
	msgInvalidID       = "O id deve ser um número inteiro"
	msgMissingName     = "Informe o nome"
	msgInvalidPrice    = "Informe um preço válido"
	msgCreateFailed    = "Erro ao inserir"
	msgDeleteFailed    = "Erro ao deletar"
	msgUpdateFailed    = "Erro ao atualizar"
	msgListFailed      = "Erro ao listar produtos"
	msgProductNotFound = "Produto não encontrado"
	msgSearchFailed    = "Nenhum produto encontrado"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validation.Validator
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validate *validation.Validator) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the product routes. The search routes are added
// before /:id so they are not captured as an id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/produto")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/nome", h.HandleSearchByName)
	productRoutes.Get("/nomeAndPreco", h.HandleSearchByNameAndPrice)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandlePatchProduct)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if ok, err := h.bindAndValidate(c, &input); !ok {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		log.Error().Err(err).Msg("error creating product")
		return message(c, fiber.StatusInternalServerError, msgCreateFailed)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": msgCreated,
		"id":      product.ID,
	})
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("error listing products")
		return message(c, fiber.StatusInternalServerError, msgListFailed)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok, err := productID(c)
	if !ok {
		return err
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		if !errors.Is(err, services.ErrProductNotFound) {
			log.Error().Err(err).Uint("product_id", id).Msg("error getting product")
		}
		return message(c, fiber.StatusNotFound, msgProductNotFound)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok, err := productID(c)
	if !ok {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.mutationError(c, err, id, msgDeleteFailed)
	}
	return message(c, fiber.StatusOK, msgDeleted)
}

// HandleUpdateProduct replaces every field of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok, err := productID(c)
	if !ok {
		return err
	}

	var input models.ProductInput
	if ok, err := h.bindAndValidate(c, &input); !ok {
		return err
	}

	if err := h.service.UpdateProduct(c.UserContext(), id, input); err != nil {
		return h.mutationError(c, err, id, msgUpdateFailed)
	}
	return message(c, fiber.StatusOK, msgUpdated)
}

// HandlePatchProduct updates only the fields present in the request body.
func (h *ProductHandler) HandlePatchProduct(c *fiber.Ctx) error {
	id, ok, err := productID(c)
	if !ok {
		return err
	}

	var patch models.ProductPatch
	if ok, err := h.bindAndValidate(c, &patch); !ok {
		return err
	}

	if err := h.service.PatchProduct(c.UserContext(), id, patch); err != nil {
		return h.mutationError(c, err, id, msgUpdateFailed)
	}
	return message(c, fiber.StatusOK, msgUpdated)
}

// HandleSearchByName returns products whose name contains ?nome=, ignoring case.
func (h *ProductHandler) HandleSearchByName(c *fiber.Ctx) error {
	name, ok := c.Queries()["nome"]
	if !ok {
		return message(c, fiber.StatusBadRequest, msgMissingName)
	}

	products, err := h.service.SearchByName(c.UserContext(), name)
	if err != nil {
		log.Error().Err(err).Str("nome", name).Msg("error searching products by name")
		return message(c, fiber.StatusNotFound, msgSearchFailed)
	}
	return c.JSON(products)
}

// HandleSearchByNameAndPrice returns products matching ?nome= priced at or
// below ?preco=.
func (h *ProductHandler) HandleSearchByNameAndPrice(c *fiber.Ctx) error {
	name, ok := c.Queries()["nome"]
	if !ok {
		return message(c, fiber.StatusBadRequest, msgMissingName)
	}
	maxPrice, err := strconv.ParseFloat(c.Query("preco"), 64)
	if err != nil {
		return message(c, fiber.StatusBadRequest, msgInvalidPrice)
	}

	products, err := h.service.SearchByNameAndMaxPrice(c.UserContext(), name, maxPrice)
	if err != nil {
		log.Error().Err(err).Str("nome", name).Float64("preco", maxPrice).Msg("error searching products by name and price")
		return message(c, fiber.StatusNotFound, msgSearchFailed)
	}
	return c.JSON(products)
}

// bindAndValidate parses the JSON body into dst and validates it. When it
// returns false the error response has already been written and its result
// must be returned by the handler.
func (h *ProductHandler) bindAndValidate(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("error parsing request body")
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msgInvalidBody,
			"error":   err.Error(),
		})
	}

	if violations := h.validate.Struct(dst); len(violations) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msgValidation,
			"errors":  violations,
		})
	}
	return true, nil
}

// mutationError maps a delete/update failure to 404 or a generic 500.
func (h *ProductHandler) mutationError(c *fiber.Ctx, err error, id uint, generic string) error {
	if errors.Is(err, services.ErrProductNotFound) {
		return message(c, fiber.StatusNotFound, msgProductNotFound)
	}
	log.Error().Err(err).Uint("product_id", id).Str("method", c.Method()).Msg("error changing product")
	return message(c, fiber.StatusInternalServerError, generic)
}

// productID reads the :id path parameter. Negative or non-integer values
// produce a 400 response and ok=false.
func productID(c *fiber.Ctx) (id uint, ok bool, err error) {
	raw, parseErr := strconv.ParseInt(c.Params("id"), 10, 64)
	if parseErr != nil {
		return 0, false, message(c, fiber.StatusBadRequest, msgInvalidID)
	}
	if raw < 0 {
		return 0, false, message(c, fiber.StatusBadRequest, msgNegativeID)
	}
	return uint(raw), true, nil
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
